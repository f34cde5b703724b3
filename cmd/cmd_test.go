package cmd_test

import (
	"bytes"
	"testing"

	"github.com/cottand/adt/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand(t *testing.T) {
	out := bytes.NewBuffer(nil)
	cmd.RunCmd.SetOut(out)
	cmd.RunCmd.SetArgs([]string{"../script/testdata/keywords.yaml"})

	require.NoError(t, cmd.RunCmd.Execute())
	assert.Equal(t, "sumA = 3\ndiffB = -1.5\nlabel = LABEL\n", out.String())
}

func TestCheckCommand(t *testing.T) {
	out := bytes.NewBuffer(nil)
	cmd.CheckCmd.SetOut(out)
	cmd.CheckCmd.SetArgs([]string{"../script/testdata/list.yaml"})

	require.NoError(t, cmd.CheckCmd.Execute())
	assert.Contains(t, out.String(), "type List[_1]\n\tNil()\n\tCons(_1, List[_1])\n")
	assert.Contains(t, out.String(), "ls = List[int].Cons(1, List[int].Cons(2, List[int].Nil()))\n")
	// check never runs branches
	assert.NotContains(t, out.String(), "not empty")
}

func TestCheckReportsValidationErrors(t *testing.T) {
	cmd.CheckCmd.SetOut(bytes.NewBuffer(nil))
	cmd.CheckCmd.SetErr(bytes.NewBuffer(nil))
	cmd.CheckCmd.SetArgs([]string{"../script/testdata/invalid_match.yaml"})

	err := cmd.CheckCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(E007) invalid alternative for 'Cons' constructor of List[int]: expected 2 positional arguments but received 1")
}

func TestMissingFile(t *testing.T) {
	cmd.RunCmd.SetErr(bytes.NewBuffer(nil))
	cmd.RunCmd.SetArgs([]string{"testdata/does-not-exist.yaml"})
	assert.Error(t, cmd.RunCmd.Execute())
}

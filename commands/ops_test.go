package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCommand(t *testing.T) {
	cmd, err := CreateCommand("start")
	assert.Nil(t, err)
	assert.Equal(t, Operation(START), cmd.Op)

	cmd, err = CreateCommand("add_peer 127.0.0.1 8080")
	assert.Nil(t, err)
	assert.Equal(t, Operation(ADD_PEER), cmd.Op)
	assert.Equal(t, []string{"127.0.0.1", "8080"}, cmd.Args)

	cmd, err = CreateCommand("show 3")
	assert.Nil(t, err)
	assert.Equal(t, Operation(SHOW), cmd.Op)
}

func TestCreateCommandInvalid(t *testing.T) {
	// Unknown keyword.
	_, err := CreateCommand("frobnicate")
	assert.NotNil(t, err)

	// start takes no arguments.
	_, err = CreateCommand("start now")
	assert.NotNil(t, err)

	// Not an ipv4 address.
	_, err = CreateCommand("add_peer ::1 8080")
	assert.NotNil(t, err)

	// Port out of shape.
	_, err = CreateCommand("add_peer 127.0.0.1 p")
	assert.NotNil(t, err)

	// Depth must be a number.
	_, err = CreateCommand("show deep")
	assert.NotNil(t, err)
}

func TestDefaultCommand(t *testing.T) {
	c := NewDefaultCommand()
	assert.True(t, c.IsDefault())
	assert.False(t, Command{Op: START}.IsDefault())
}

func TestCreateClientCommand(t *testing.T) {
	cmd, err := CreateClientCommand("transfer 00ab 3.5")
	assert.Nil(t, err)
	assert.Equal(t, Operation(TRANSFER), cmd.Op)

	cmd, err = CreateClientCommand("connect 127.0.0.1 10000")
	assert.Nil(t, err)
	assert.Equal(t, Operation(CONNECT), cmd.Op)

	cmd, err = CreateClientCommand("my_pk")
	assert.Nil(t, err)
	assert.Equal(t, Operation(MY_PK), cmd.Op)
}

func TestCreateClientCommandInvalid(t *testing.T) {
	// Transfer amounts must be positive numbers.
	_, err := CreateClientCommand("transfer 00ab -1")
	assert.NotNil(t, err)
	_, err = CreateClientCommand("transfer 00ab lots")
	assert.NotNil(t, err)

	_, err = CreateClientCommand("connect host 8080")
	assert.NotNil(t, err)

	_, err = CreateClientCommand("get_balance now")
	assert.NotNil(t, err)
}

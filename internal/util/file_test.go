package util

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestReadIntFromFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "temp1_input")
	err := os.WriteFile(path, []byte("52000\n"), 0644)
	assert.NoError(t, err)

	// WHEN
	value, err := ReadIntFromFile(path)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 52000, value)
}

func TestReadIntFromFileMissing(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "temp1_input")

	// WHEN
	_, err := ReadIntFromFile(path)

	// THEN
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestReadIntFromFileEmpty(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")
	err := os.WriteFile(path, []byte(""), 0644)
	assert.NoError(t, err)

	// WHEN
	_, err = ReadIntFromFile(path)

	// THEN
	assert.Error(t, err)
}

func TestWriteIntToFile(t *testing.T) {
	// GIVEN
	path := filepath.Join(t.TempDir(), "pwm1")

	// WHEN
	err := WriteIntToFile(128, path)

	// THEN
	assert.NoError(t, err)
	value, err := ReadIntFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 128, value)
}

func TestFindFilesMatching(t *testing.T) {
	// GIVEN
	dir := t.TempDir()
	for _, name := range []string{"pwm1", "pwm2", "pwm1_enable", "fan1_input", "name"} {
		err := os.WriteFile(filepath.Join(dir, name), []byte("0"), 0644)
		assert.NoError(t, err)
	}

	// WHEN
	result, err := FindFilesMatching(dir, regexp.MustCompile("^pwm[0-9]+$"))

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "pwm1"),
		filepath.Join(dir, "pwm2"),
	}, result)
}

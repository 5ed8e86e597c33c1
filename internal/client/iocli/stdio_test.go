package iocli

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Проверяем что NewStdio возвращает валидный объект
func TestNewStdio(t *testing.T) {
	stdio := NewStdio()
	assert.NotNil(t, stdio)
}

func TestPrintlnAndPrintf(t *testing.T) {
	var out bytes.Buffer
	stdio := NewStreams(strings.NewReader(""), &out)

	stdio.Println("hello", "world")
	stdio.Printf("test %d %s\n", 1, "abc")
	_, err := stdio.Write([]byte("raw"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc\nraw", out.String())
}

// Тест ReadInput: читаем из pipe вместо os.Stdin
func TestReadInput(t *testing.T) {
	input := "user input\n"
	r, w, err := os.Pipe()
	assert.NoError(t, err)

	// Пишем в pipe в отдельной горутине, имитируя ввод пользователя
	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	var out bytes.Buffer
	stdio := NewStreams(r, &out)
	result, err := stdio.ReadInput("Prompt: ")
	assert.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(input), result)
	assert.Equal(t, "Prompt: ", out.String())
}

func TestReadInput_NoTrailingNewline(t *testing.T) {
	stdio := NewStreams(strings.NewReader("last line"), io.Discard)
	result, err := stdio.ReadInput("")
	require.NoError(t, err)
	assert.Equal(t, "last line", result)
}

func TestReadInput_EmptyInput(t *testing.T) {
	stdio := NewStreams(strings.NewReader(""), io.Discard)
	_, err := stdio.ReadInput("")
	assert.ErrorIs(t, err, io.EOF)
}

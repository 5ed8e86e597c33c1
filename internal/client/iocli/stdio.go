package iocli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Stdio реализация IO поверх потоков процесса.
// Вывод сериализуется: watch печатает события и состояние канала из разных горутин.
type Stdio struct {
	in  io.Reader
	out io.Writer
	mu  sync.Mutex
}

func NewStdio() IO {
	return NewStreams(os.Stdin, os.Stdout)
}

// NewStreams создает IO с заданными потоками (например, cmd.OutOrStdout())
func NewStreams(in io.Reader, out io.Writer) IO {
	return &Stdio{in: in, out: out}
}

func (s *Stdio) Println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	reader := bufio.NewReader(s.in)
	input, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

package logger

import (
	"fmt"
	"io"
)

type Logger struct {
	Prints chan string
}

func Init() *Logger {
	return &Logger{make(chan string, 100)}
}

func (l *Logger) Print(s string) {
	l.Prints <- s
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Prints <- fmt.Sprintf(s, as...)
}

func (l *Logger) PrintError(source string, err error) {
	l.Printf("Error(%s) -> %s", source, err.Error())
}

// Drain copies log lines to w until the channel closes. Run it in a
// goroutine when there is no log view around to consume Prints.
func (l *Logger) Drain(w io.Writer) {
	for s := range l.Prints {
		fmt.Fprintln(w, s)
	}
}

package logger

// LoggerInterface is the logging surface the library asks for. The channel
// logger in this package implements it; anything else that can swallow
// formatted lines works too.
type LoggerInterface interface {
	Print(s string)
	Printf(s string, as ...interface{})
	PrintError(source string, err error)
}

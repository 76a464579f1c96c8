package logx

import (
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// By default everything goes to stderr. Init swaps in a rotated file sink.
var logger = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)

// Init routes log output to a size/age rotated file under the given path,
// still echoing to stderr so an attached terminal sees chain activity.
func Init(filename string, maxSizeMB, maxAgeDays int) {
	rotated := &lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSizeMB, // megabytes
		MaxAge:   maxAgeDays, // days
	}
	logger = log.New(io.MultiWriter(os.Stderr, rotated), "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

func Info(format string, args ...interface{}) {
	logger.Printf("%s[INFO]%s %s", colorGreen, colorReset, fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	logger.Printf("%s[WARN]%s %s", colorYellow, colorReset, fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	logger.Printf("%s[ERROR]%s %s", colorRed, colorReset, fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	logger.Fatalf("%s[FATAL]%s %s", colorRed, colorReset, fmt.Sprintf(format, args...))
}

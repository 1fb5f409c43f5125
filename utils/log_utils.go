package utils

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"
)

var debug bool

func init() {
	debug = os.Getenv("DEBUG") != ""
}

// LogInfo example:
//
// LogInfo("parsed %d elements", count)
//
func LogInfo(msg string, vars ...interface{}) {
	_, file, line, _ := runtime.Caller(1)
	fileAsPaths := strings.Split(file, "/")
	log.Printf(strings.Join([]string{"[INFO]", fmt.Sprintf("[%s:%d]", fileAsPaths[len(fileAsPaths)-1], line), msg}, " "), vars...)
}

// LogDebug only writes when the DEBUG env var is set.
func LogDebug(msg string, vars ...interface{}) {
	if debug {
		_, file, line, _ := runtime.Caller(1)
		fileAsPaths := strings.Split(file, "/")
		log.Printf(strings.Join([]string{"[DEBUG]", fmt.Sprintf("[%s:%d]", fileAsPaths[len(fileAsPaths)-1], line), msg}, " "), vars...)
	}
}

// LogError is a no-op when err is nil.
func LogError(err error) {
	if err == nil {
		return
	}
	pc, fn, line, _ := runtime.Caller(1)
	if debug {
		log.Printf("[ERROR] [%s:%s:%d] %s", runtime.FuncForPC(pc).Name(), fn, line, err)
	} else {
		log.Printf("[ERROR] [%s:%d] %s", fn, line, err)
	}
}

package logging

import "log"

// Debug controls whether debug logs are printed.
var Debug bool

// Debugf logs a formatted debug message when Debug is enabled.
func Debugf(format string, v ...any) {
	if Debug {
		log.Printf("DEBUG: "+format, v...)
	}
}

// Infof logs a formatted informational message.
func Infof(format string, v ...any) {
	log.Printf("[INFO] "+format, v...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...any) {
	log.Printf("[WARN] "+format, v...)
}

package igmpsnoop

import (
	"log"

	uuid "github.com/satori/go.uuid"
)

// newShortID returns 10 bytes of a new UUID4 as a string, used to tag a
// single PurgeCache call in its log line.
func newShortID() string {
	fullUUID := uuid.NewV4()
	last10 := fullUUID[len(fullUUID)-10:]
	return string(last10)
}

// HandleError logs and exits if err is not nil.
func HandleError(err error) {
	HandleFatalError(err)
}

// HandleMinorError logs err without exiting, if it is not nil.
func HandleMinorError(err error) {
	if err != nil {
		log.Println("ERROR: ", err)
	}
}

// HandleFatalError logs err and exits the process if it is not nil.
func HandleFatalError(err error) {
	if err != nil {
		log.Fatal("ERROR: ", err)
	}
}

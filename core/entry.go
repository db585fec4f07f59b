package core

import (
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

// Entry represents a log record with all its metadata
type Entry struct {
	Time    time.Time
	Level   Level
	Channel string
	Message string
	Fields  []Field
	Caller  CallerInfo
}

// CallerInfo contains information about the caller
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

// String returns "file:line" using the short file name
func (c CallerInfo) String() string {
	if !c.Defined {
		return ""
	}
	return c.ShortFile + ":" + strconv.Itoa(c.Line)
}

// entryPool is a pool of Entry objects to reduce allocations
var entryPool = sync.Pool{
	New: func() interface{} {
		return &Entry{
			Fields: make([]Field, 0, 8), // Pre-allocate for 8 fields
		}
	},
}

// GetEntry retrieves an Entry from the pool
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	e.Time = time.Now()
	e.Fields = e.Fields[:0]
	e.Caller = CallerInfo{}
	return e
}

// PutEntry returns an Entry to the pool
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	e.Fields = e.Fields[:0]
	e.Message = ""
	e.Channel = ""
	e.Caller = CallerInfo{}
	entryPool.Put(e)
}

// CloneEntry returns a pooled deep copy of e. The caller owns the copy.
func CloneEntry(e *Entry) *Entry {
	c := entryPool.Get().(*Entry)
	c.Time = e.Time
	c.Level = e.Level
	c.Channel = e.Channel
	c.Message = e.Message
	c.Caller = e.Caller
	c.Fields = append(c.Fields[:0], e.Fields...)
	return c
}

// GetCaller retrieves caller information
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName string
	if fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Function:  funcName,
		Defined:   true,
	}
}

package bytestream

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Transcript 解码记录. 只用于观察, 解码过程从不读取它, 记录本身也不会失败.
type Transcript interface {
	Record(offset int, kind string, value any)
}

// TranscriptFunc ...
type TranscriptFunc func(offset int, kind string, value any)

// Record Transcript
func (f TranscriptFunc) Record(offset int, kind string, value any) {
	f(offset, kind, value)
}

// TextTranscript 累积 "(Kind): value\n" 形式的文本
type TextTranscript struct {
	b strings.Builder
}

// Record Transcript
func (t *TextTranscript) Record(_ int, kind string, value any) {
	fmt.Fprintf(&t.b, "(%s): %v\n", kind, value)
}

// String ...
func (t *TextTranscript) String() string {
	return t.b.String()
}

// Reset ...
func (t *TextTranscript) Reset() {
	t.b.Reset()
}

type logrusTranscript struct {
	logger logrus.Ext1FieldLogger
}

// LogrusTranscript 以 Trace 级别把每个字段写到 logger
func LogrusTranscript(logger logrus.Ext1FieldLogger) Transcript {
	return &logrusTranscript{logger: logger}
}

func (t *logrusTranscript) Record(offset int, kind string, value any) {
	t.logger.WithFields(logrus.Fields{
		"offset": offset,
		"kind":   kind,
		"value":  value,
	}).Trace("bytestream read")
}

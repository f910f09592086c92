// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reporter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"
)

// Level is the severity of a rendered diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "error"
}

// Renderer formats diagnostics for a terminal: the message, followed by
// the offending source line and a caret under the reported column.
type Renderer struct {
	// Colorize enables ANSI colors regardless of whether the output is a TTY.
	Colorize bool
	// TabStop is the width tabs are expanded to in the source excerpt.
	// Defaults to 4.
	TabStop int
}

// Render formats err at the given level. src is the contents of the file
// named in err's position; if err has no position or src is nil only the
// message line is produced. The result always ends in a newline.
func (r Renderer) Render(level Level, err error, src []byte) string {
	var buf strings.Builder
	levelColor := color.New(color.FgRed, color.Bold)
	if level == LevelWarning {
		levelColor = color.New(color.FgYellow, color.Bold)
	}
	caretColor := color.New(color.FgGreen, color.Bold)
	if r.Colorize {
		levelColor.EnableColor()
		caretColor.EnableColor()
	} else {
		levelColor.DisableColor()
		caretColor.DisableColor()
	}

	buf.WriteString(levelColor.Sprint(level.String() + ":"))
	buf.WriteByte(' ')
	buf.WriteString(err.Error())
	buf.WriteByte('\n')

	var ewp ErrorWithPos
	if !errors.As(err, &ewp) || src == nil {
		return buf.String()
	}
	pos := ewp.GetPosition()
	if pos.Line <= 0 {
		return buf.String()
	}
	line, prefix, ok := lineAt(src, pos.Line, pos.Offset)
	if !ok {
		return buf.String()
	}

	gutter := fmt.Sprintf("%d", pos.Line)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(&buf, "%s | %s\n", gutter, r.expand(line))
	fmt.Fprintf(&buf, "%s | %s%s\n", pad, strings.Repeat(" ", r.width(prefix)), caretColor.Sprint("^"))
	return buf.String()
}

// lineAt returns the text of the given 1-based line and the portion of it
// that precedes offset.
func lineAt(src []byte, line, offset int) (text, prefix string, ok bool) {
	start := 0
	for i := 1; i < line; i++ {
		idx := bytes.IndexByte(src[start:], '\n')
		if idx < 0 {
			return "", "", false
		}
		start += idx + 1
	}
	end := bytes.IndexByte(src[start:], '\n')
	if end < 0 {
		end = len(src)
	} else {
		end += start
	}
	text = strings.TrimSuffix(string(src[start:end]), "\r")
	if offset >= start && offset-start <= len(text) {
		prefix = text[:offset-start]
	}
	return text, prefix, true
}

func (r Renderer) tabStop() int {
	if r.TabStop <= 0 {
		return 4
	}
	return r.TabStop
}

// expand replaces tabs with spaces so that the caret lines up.
func (r Renderer) expand(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var buf strings.Builder
	col := 0
	for _, seg := range strings.SplitAfter(s, "\t") {
		text := strings.TrimSuffix(seg, "\t")
		buf.WriteString(text)
		col += uniseg.StringWidth(text)
		if len(text) < len(seg) {
			n := r.tabStop() - col%r.tabStop()
			buf.WriteString(strings.Repeat(" ", n))
			col += n
		}
	}
	return buf.String()
}

// width is the display width of s once tabs are expanded.
func (r Renderer) width(s string) int {
	return uniseg.StringWidth(r.expand(s))
}

package runtime

import (
	"io"
	"strings"

	"github.com/chazu/moonlet/pkg/bytecode"
)

// Print returns the print native writing to w: arguments are rendered with
// Value.String, separated by tabs and followed by a newline.
func Print(w io.Writer) func(args []bytecode.Value) error {
	return func(args []bytecode.Value) error {
		var sb strings.Builder
		for i, arg := range args {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(arg.String())
		}
		sb.WriteByte('\n')
		_, err := io.WriteString(w, sb.String())
		return err
	}
}

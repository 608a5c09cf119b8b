package stream

import "github.com/dkoosis/subunit/pkg/render"

// ThemeStyle colors display lines with a render theme.
func ThemeStyle(t render.Theme) StyleFunc {
	return func(kind LineKind, text string) string {
		switch kind {
		case KindPass:
			return t.Success.Render(text)
		case KindFail, KindError:
			return t.Error.Render(text)
		case KindSkip:
			return t.Warning.Render(text)
		case KindXfail, KindOutput, KindSeparator:
			return t.Muted.Render(text)
		default:
			return text
		}
	}
}

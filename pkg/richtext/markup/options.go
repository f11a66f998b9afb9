package markup

type Option func(*parser)

// WithLiteralInline keeps the inline text of every block as a single
// unmarked text node, so "**x**" stays four asterisks and an x.
func WithLiteralInline() Option {
	return func(p *parser) {
		p.literal = true
	}
}

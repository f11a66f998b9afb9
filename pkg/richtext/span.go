package richtext

// Span is a run of inline nodes sharing the same outermost mark.
// For a span without a Mark, Children holds exactly one node which is
// emitted as is.
type Span struct {
	Mark     Mark
	Children []Node
}

// Spans groups consecutive text nodes by their outermost (last) mark and
// strips that mark from the grouped children. Applied recursively, it wraps
// a lone text node in its marks in slice order, and nests adjacent text
// nodes under a shared wrapper, which is how the markup parser sees
// "**bold *and italic***".
func Spans(nodes []Node) []Span {
	var spans []Span
	for i := 0; i < len(nodes); {
		t, ok := nodes[i].(Text)
		if !ok || len(t.Marks) == 0 {
			if nodes[i] != nil {
				spans = append(spans, Span{Children: []Node{nodes[i]}})
			}
			i++
			continue
		}

		outer := t.Marks[len(t.Marks)-1]
		j := i + 1
		for j < len(nodes) && hasOuterMark(nodes[j], outer) {
			j++
		}

		children := make([]Node, 0, j-i)
		for _, n := range nodes[i:j] {
			t := n.(Text)
			children = append(children, Text{Text: t.Text, Marks: t.Marks[:len(t.Marks)-1]})
		}
		spans = append(spans, Span{Mark: outer, Children: children})
		i = j
	}
	return spans
}

func hasOuterMark(n Node, mark Mark) bool {
	t, ok := n.(Text)
	return ok && len(t.Marks) > 0 && SameMark(t.Marks[len(t.Marks)-1], mark)
}

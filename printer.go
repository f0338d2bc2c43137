package parsing

import (
	"fmt"
	"strings"
)

type treePrinter struct {
	padStr []string
	output strings.Builder
}

func (tp *treePrinter) indent(s string) { tp.padStr = append(tp.padStr, s) }
func (tp *treePrinter) unindent()       { tp.padStr = tp.padStr[:len(tp.padStr)-1] }

func (tp *treePrinter) padding() {
	for _, item := range tp.padStr {
		tp.write(item)
	}
}

func (tp *treePrinter) write(s string) { tp.output.WriteString(s) }

func (tp *treePrinter) writel(s string) {
	tp.write(s)
	tp.output.WriteRune('\n')
}

// children prints each item as a branch of the node just written
func (tp *treePrinter) children(n int, item func(i int)) {
	for i := 0; i < n; i++ {
		tp.padding()
		if i == n-1 {
			tp.write("└── ")
			tp.indent("    ")
		} else {
			tp.write("├── ")
			tp.indent("│   ")
		}
		item(i)
		tp.unindent()
	}
}

var literalSanitizer = strings.NewReplacer(
	`\`, `\\`,
	string('\n'), `\n`,
	string('\r'), `\r`,
	string('\t'), `\t`,
)

func escapeLiteral(s string) string {
	return literalSanitizer.Replace(s)
}

// PrettyString renders the expression tree, one node per line
func (p *Parser) PrettyString() string {
	tp := &treePrinter{}
	p.print(tp)
	return strings.TrimSuffix(tp.output.String(), "\n")
}

func (p *Parser) print(tp *treePrinter) {
	switch p.Kind {
	case KindChar, KindString, KindKeyword:
		tp.writel(fmt.Sprintf("%s[%s]", p.Kind, p.Info()))
	case KindCharSet:
		tp.writel(fmt.Sprintf("%s[%s]", p.Kind, escapeLiteral(p.Info())))
	case KindKeywordList:
		tp.writel(fmt.Sprintf("%s[%s]", p.Kind, p.name))
	case KindAction:
		tp.writel(fmt.Sprintf("%s[%s]", p.Kind, p.name))
	case KindNonterminal:
		if p.name != p.text {
			tp.writel(fmt.Sprintf("%s[%s: %s]", p.Kind, p.name, p.text))
		} else {
			tp.writel(fmt.Sprintf("%s[%s]", p.Kind, p.text))
		}
	default:
		tp.writel(p.Kind.String())
	}
	tp.children(len(p.children), func(i int) { p.children[i].print(tp) })
}

// PrettyString renders every rule of the grammar with its expression
// tree
func (g *Grammar) PrettyString() string {
	tp := &treePrinter{}
	tp.writel(fmt.Sprintf("Grammar[%s]", g.FullName()))
	tp.children(len(g.order), func(i int) {
		r := g.order[i]
		tp.writel(fmt.Sprintf("Rule[%s]", r.name))
		tp.padding()
		tp.write("└── ")
		tp.indent("    ")
		r.body.print(tp)
		tp.unindent()
	})
	return strings.TrimSuffix(tp.output.String(), "\n")
}

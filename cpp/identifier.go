package cpp

import (
	parsing "github.com/slaakko/cminor-sub003"
)

type identifierGrammar struct{ namespaced }

func (identifierGrammar) Name() string         { return "Identifier" }
func (identifierGrammar) References() []string { return []string{"stdlib"} }

func (identifierGrammar) CreateRules(g *parsing.Grammar) {
	g.LinkRule("identifier", "stdlib.identifier")
	g.SetSkip(skipRule)
	g.SetStart("Identifier")

	g.AddRule("Identifier",
		parsing.Action("A0", parsing.Token(parsing.Diff(parsing.Call("identifier"), parsing.Call("Keyword")))),
		parsing.Returns[string]())
	g.AddRule("Keyword", parsing.KeywordList("keyword", Keywords))
	g.AddRule("QualifiedId",
		parsing.Action("A0", parsing.Token(parsing.Seq(
			parsing.Opt(parsing.Str("::")),
			parsing.Call("Identifier"),
			parsing.Many(parsing.Seq(parsing.Str("::"), parsing.Call("Identifier")))))),
		parsing.Returns[string]())
}

func (identifierGrammar) Link(g *parsing.Grammar) error {
	g.Rule("Identifier").Action("A0").SetAction(setText)
	g.Rule("QualifiedId").Action("A0").SetAction(setText)
	return nil
}

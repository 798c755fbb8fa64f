package testutil

// WithStandardPalette adds a small palette spanning every category, with a
// dependency chain and an alias-carrying block. Tests that need a realistic
// catalog without caring about exact contents start here.
func (b *Builder) WithStandardPalette() *Builder {
	return b.
		WithBlock("message.text",
			DisplayName("Text Message"), Description("Send a plain text message"),
			Color("#2D9CDB"), Tags("text", "send"), Aliases("text", "say")).
		WithBlock("message.image",
			DisplayName("Image Message"), Color("#2D9CDB"),
			Contexts("flow", "rich-message")).
		WithBlock("input.text",
			DisplayName("Text Input"), Color("#27AE60"),
			Aliases("user_input"), Tags("capture")).
		WithBlock("logic.condition",
			DisplayName("Condition"), Color("#F2994A"),
			DependsOn("input.text"), Aliases("if", "branch")).
		WithBlock("action.set-variable",
			DisplayName("Set Variable"), Color("#9B51E0"),
			Aliases("setvar")).
		WithBlock("action.http-request",
			DisplayName("HTTP Request"), Color("#9B51E0"),
			DependsOn("action.set-variable"), Aliases("api", "webhook"),
			Optional()).
		WithBlock("integration.nlu",
			DisplayName("NLU Intent"), Color("#EB5757"),
			Aliases("dialogflow"), Optional(), Experimental()).
		WithBlock("layout.card",
			DisplayName("Card"), Color("#BB6BD9"),
			Contexts("rich-message"))
}

// WithDependencyChain adds blocks a.one <- a.two <- a.three, each depending
// on the previous. Useful for resolver ordering tests over catalog input.
func (b *Builder) WithDependencyChain() *Builder {
	return b.
		WithBlock("a.three", DependsOn("a.two")).
		WithBlock("a.two", DependsOn("a.one")).
		WithBlock("a.one")
}

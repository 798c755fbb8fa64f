package block

// Category buckets palette blocks by the job they do on the canvas.
type Category string

const (
	CategoryMessage     Category = "message"     // Outgoing bot messages (text, image, audio)
	CategoryInput       Category = "input"       // User input collection (free text, email, choice)
	CategoryLogic       Category = "logic"       // Branching, conditions, jumps
	CategoryAction      Category = "action"      // Side effects (set variable, HTTP request)
	CategoryIntegration Category = "integration" // External service connectors
	CategoryLayout      Category = "layout"      // Rich message layout (cards, carousels)
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryMessage,
		CategoryInput,
		CategoryLogic,
		CategoryAction,
		CategoryIntegration,
		CategoryLayout,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryMessage, CategoryInput, CategoryLogic,
		CategoryAction, CategoryIntegration, CategoryLayout:
		return true
	default:
		return false
	}
}

// RequiredCategories are the categories a usable palette cannot be without.
// A completed initialization that leaves one of these empty is flagged with
// a warning.
func RequiredCategories() []Category {
	return []Category{CategoryMessage, CategoryInput, CategoryLogic}
}

// CanvasContext names a canvas surface a block may be placed on.
type CanvasContext string

const (
	ContextFlow        CanvasContext = "flow"         // The main conversation flow canvas
	ContextRichMessage CanvasContext = "rich-message" // The message layout canvas
	ContextSubflow     CanvasContext = "subflow"      // Reusable sub-flow canvas
)

// CanvasContexts returns every valid canvas context.
func CanvasContexts() []CanvasContext {
	return []CanvasContext{ContextFlow, ContextRichMessage, ContextSubflow}
}

// Valid reports whether ctx is a known canvas context.
func (ctx CanvasContext) Valid() bool {
	switch ctx {
	case ContextFlow, ContextRichMessage, ContextSubflow:
		return true
	default:
		return false
	}
}

package label

// Player is the identity a label is owned by.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Display selects where the label text is shown on interaction.
type Display string

const (
	DisplayMiddle Display = "middle"
	DisplayChat   Display = "chat"
)

// ValidDisplay reports whether s names a display mode exactly.
func ValidDisplay(s string) bool {
	return Display(s) == DisplayMiddle || Display(s) == DisplayChat
}

// Label is a text annotation bound to one brick position. Text is
// never empty; Owner only changes through explicit store operations
// (move/copy keep it).
type Label struct {
	Text    string  `json:"text"`
	Owner   Player  `json:"owner"`
	Display Display `json:"dest,omitempty"`
}

// EffectiveDisplay treats an absent mode as middle.
func (l Label) EffectiveDisplay() Display {
	if l.Display == DisplayChat {
		return DisplayChat
	}
	return DisplayMiddle
}

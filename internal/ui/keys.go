package ui

// Keybinding represents a keyboard shortcut with its display name.
type Keybinding struct {
	Key  string // actual key(s) to match
	Desc string // description for help display
}

// Global keybindings (always available)
var (
	KeyQuit        = Keybinding{Key: "q", Desc: "Quit"}
	KeyQuitAlt     = Keybinding{Key: "ctrl+c", Desc: "Quit"}
	KeyHelp        = Keybinding{Key: "?", Desc: "Show help"}
	KeySearch      = Keybinding{Key: "/", Desc: "Edit filters"}
	KeySortMode    = Keybinding{Key: "s", Desc: "Cycle sort mode"}
	KeyFavorites   = Keybinding{Key: "f", Desc: "Only show favorites"}
	KeyClearAll    = Keybinding{Key: "c", Desc: "Clear all filters"}
	KeyExportJSON  = Keybinding{Key: "e", Desc: "Export report (JSON)"}
	KeyExportCSV   = Keybinding{Key: "E", Desc: "Export report (CSV)"}
	KeyRefreshUp   = Keybinding{Key: "+", Desc: "Increase refresh rate"}
	KeyRefreshDown = Keybinding{Key: "-", Desc: "Decrease refresh rate"}
)

// Navigation keybindings
var (
	KeyUp       = Keybinding{Key: "up", Desc: "Move up"}
	KeyUpAlt    = Keybinding{Key: "k", Desc: "Move up"}
	KeyDown     = Keybinding{Key: "down", Desc: "Move down"}
	KeyDownAlt  = Keybinding{Key: "j", Desc: "Move down"}
	KeyPrevPage = Keybinding{Key: "left", Desc: "Previous page"}
	KeyPrevAlt  = Keybinding{Key: "[", Desc: "Previous page"}
	KeyNextPage = Keybinding{Key: "right", Desc: "Next page"}
	KeyNextAlt  = Keybinding{Key: "]", Desc: "Next page"}
	KeyEnter    = Keybinding{Key: "enter", Desc: "Connection details"}
	KeyEsc      = Keybinding{Key: "esc", Desc: "Back/cancel"}
)

// Row keybindings
var (
	KeyFavorite = Keybinding{Key: "*", Desc: "Toggle favorite"}
)

// Filter input keybindings
var (
	KeyNextInput  = Keybinding{Key: "tab", Desc: "Next filter"}
	KeyPrevInput  = Keybinding{Key: "shift+tab", Desc: "Previous filter"}
	KeyClearInput = Keybinding{Key: "ctrl+x", Desc: "Clear this filter"}
)

// helpBindings lists the bindings shown in the help modal, in order.
var helpBindings = []Keybinding{
	KeyUp, KeyDown, KeyPrevPage, KeyNextPage, KeyEnter, KeyFavorite,
	KeySearch, KeyNextInput, KeyClearInput, KeyFavorites, KeyClearAll,
	KeySortMode, KeyExportJSON, KeyExportCSV, KeyRefreshUp, KeyRefreshDown,
	KeyHelp, KeyQuit,
}

// matchKey checks if the input matches the keybinding.
func matchKey(input string, keys ...Keybinding) bool {
	for _, k := range keys {
		if input == k.Key {
			return true
		}
	}
	return false
}

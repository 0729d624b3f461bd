package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	esc     key.Binding
	tab     key.Binding
	backtab key.Binding
	quit    key.Binding
	logout  key.Binding
	newChat key.Binding
	reload  key.Binding
	resend  key.Binding
	retry   key.Binding
	refresh key.Binding
	copy    key.Binding
	version key.Binding
}

var keys = keyMap{
	up:      key.NewBinding(key.WithKeys("up", "k")),
	down:    key.NewBinding(key.WithKeys("down", "j")),
	enter:   key.NewBinding(key.WithKeys("enter")),
	esc:     key.NewBinding(key.WithKeys("esc")),
	tab:     key.NewBinding(key.WithKeys("tab")),
	backtab: key.NewBinding(key.WithKeys("shift+tab")),
	quit:    key.NewBinding(key.WithKeys("ctrl+c")),
	logout:  key.NewBinding(key.WithKeys("l")),
	newChat: key.NewBinding(key.WithKeys("n")),
	reload:  key.NewBinding(key.WithKeys("r")),
	resend:  key.NewBinding(key.WithKeys("ctrl+r")),
	retry:   key.NewBinding(key.WithKeys("ctrl+r")),
	refresh: key.NewBinding(key.WithKeys("ctrl+f")),
	copy:    key.NewBinding(key.WithKeys("ctrl+y")),
	version: key.NewBinding(key.WithKeys("v")),
}

// chatKeys are the bindings of the conversation screen, where plain letters
// belong to the message input.
var chatKeys = struct {
	up   key.Binding
	down key.Binding
}{
	up:   key.NewBinding(key.WithKeys("up")),
	down: key.NewBinding(key.WithKeys("down")),
}

// Package protocol defines the JSON packets exchanged with clients.
// Every frame is one object with a required "type" field; unknown
// types are ignored by both sides.
package protocol

// Client -> server packet types.
const (
	TypeAuthorize = "authorize"
	TypeRegister  = "register"
	TypeMenu      = "menu"
	TypeEditbox   = "editbox"
	TypeKeybind   = "keybind"
	TypeChat      = "chat"
	TypePing      = "ping"
)

// Inbound is the union of every client -> server packet. Fields not
// belonging to the packet's type are simply left at their zero value.
type Inbound struct {
	Type string `json:"type"`

	// authorize / register
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Email    string `json:"email,omitempty"` // accepted, ignored
	Bio      string `json:"bio,omitempty"`   // accepted, ignored

	// menu
	MenuID      string `json:"menu_id,omitempty"`
	SelectionID string `json:"selection_id,omitempty"`
	Selection   int    `json:"selection,omitempty"` // 1-based index fallback

	// editbox
	InputID string `json:"input_id,omitempty"`
	Text    string `json:"text,omitempty"`

	// keybind
	Key        string `json:"key,omitempty"`
	Shift      bool   `json:"shift,omitempty"`
	Control    bool   `json:"control,omitempty"`
	Alt        bool   `json:"alt,omitempty"`
	MenuItemID string `json:"menu_item_id,omitempty"`
	MenuIndex  int    `json:"menu_index,omitempty"`

	// chat
	Convo    string `json:"convo,omitempty"` // "table" or "global"
	Message  string `json:"message,omitempty"`
	Language string `json:"language,omitempty"`
}

// Packet is any server -> client packet. All of them are plain structs
// with a Type discriminator, so the empty interface is constrained by
// convention only.
type Packet any

// MenuItem is one selectable line of a menu.
type MenuItem struct {
	Text string `json:"text"`
	ID   string `json:"id"`
}

type AuthorizeSuccess struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Version  string `json:"version"`
}

type Disconnect struct {
	Type      string `json:"type"`
	Reason    string `json:"reason,omitempty"`
	Reconnect bool   `json:"reconnect"`
}

type GameEntry struct {
	GameType string `json:"type"`
	Name     string `json:"name"`
}

type UpdateOptionsLists struct {
	Type  string      `json:"type"`
	Games []GameEntry `json:"games"`
}

type Speak struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ShowMenu struct {
	Type           string     `json:"type"`
	MenuID         string     `json:"menu_id"`
	Items          []MenuItem `json:"items"`
	Multiletter    bool       `json:"multiletter"`
	EscapeBehavior string     `json:"escape_behavior"`
}

type UpdateMenu struct {
	Type        string     `json:"type"`
	MenuID      string     `json:"menu_id"`
	Items       []MenuItem `json:"items"`
	SelectionID string     `json:"selection_id,omitempty"`
}

type RemoveMenu struct {
	Type   string `json:"type"`
	MenuID string `json:"menu_id"`
}

type ShowEditbox struct {
	Type    string `json:"type"`
	InputID string `json:"input_id"`
	Prompt  string `json:"prompt"`
	Default string `json:"default"`
}

type PlaySound struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
	Pan    float64 `json:"pan"`
	Pitch  float64 `json:"pitch"`
}

type PlayMusic struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Looping bool   `json:"looping"`
}

type PlayAmbience struct {
	Type  string `json:"type"`
	Loop  string `json:"loop"`
	Intro string `json:"intro,omitempty"`
	Outro string `json:"outro,omitempty"`
}

type StopAmbience struct {
	Type string `json:"type"`
}

type Chat struct {
	Type     string `json:"type"`
	Convo    string `json:"convo"`
	Sender   string `json:"sender"`
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type Pong struct {
	Type string `json:"type"`
}

// Constructors keep the Type discriminator in one place.

func NewAuthorizeSuccess(username, version string) AuthorizeSuccess {
	return AuthorizeSuccess{Type: "authorize_success", Username: username, Version: version}
}

func NewDisconnect(reason string, reconnect bool) Disconnect {
	return Disconnect{Type: "disconnect", Reason: reason, Reconnect: reconnect}
}

func NewUpdateOptionsLists(games []GameEntry) UpdateOptionsLists {
	return UpdateOptionsLists{Type: "update_options_lists", Games: games}
}

func NewSpeak(text string) Speak {
	return Speak{Type: "speak", Text: text}
}

func NewShowMenu(menuID string, items []MenuItem, multiletter bool, escapeBehavior string) ShowMenu {
	return ShowMenu{Type: "show_menu", MenuID: menuID, Items: items, Multiletter: multiletter, EscapeBehavior: escapeBehavior}
}

func NewUpdateMenu(menuID string, items []MenuItem, selectionID string) UpdateMenu {
	return UpdateMenu{Type: "update_menu", MenuID: menuID, Items: items, SelectionID: selectionID}
}

func NewRemoveMenu(menuID string) RemoveMenu {
	return RemoveMenu{Type: "remove_menu", MenuID: menuID}
}

func NewShowEditbox(inputID, prompt, def string) ShowEditbox {
	return ShowEditbox{Type: "show_editbox", InputID: inputID, Prompt: prompt, Default: def}
}

func NewPlaySound(name string, volume, pan, pitch float64) PlaySound {
	return PlaySound{Type: "play_sound", Name: name, Volume: volume, Pan: pan, Pitch: pitch}
}

func NewPlayMusic(name string, looping bool) PlayMusic {
	return PlayMusic{Type: "play_music", Name: name, Looping: looping}
}

func NewPlayAmbience(loop, intro, outro string) PlayAmbience {
	return PlayAmbience{Type: "play_ambience", Loop: loop, Intro: intro, Outro: outro}
}

func NewStopAmbience() StopAmbience {
	return StopAmbience{Type: "stop_ambience"}
}

func NewChat(convo, sender, message, language string) Chat {
	return Chat{Type: "chat", Convo: convo, Sender: sender, Message: message, Language: language}
}

func NewPong() Pong {
	return Pong{Type: "pong"}
}

package models

import "fmt"

// Member types within a chat group. Both admin roles appear as teachers.
const (
	MemberTypeStudent = "student"
	MemberTypeTeacher = "teacher"
)

// Chat permission modes deciding who may post into a group.
const (
	ChatAll           = "all"
	ChatTeachersOnly  = "teachers_only"
	ChatAdminsOnly    = "admins_only"
	ChatMainAdminOnly = "main_admin_only"
	ChatCustom        = "custom"
)

// GroupAllID is the well-known auto-derived group whose member list mirrors
// the scope's current roster.
const GroupAllID = "group_all"

// Member is one group participant.
type Member struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key renders the member as the "type:id" form used in custom allow lists.
func (m Member) Key() string {
	return MemberKey(m.Type, m.ID)
}

// MemberKey builds the "type:id" key for a sender.
func MemberKey(memberType, id string) string {
	return fmt.Sprintf("%s:%s", memberType, id)
}

// GroupPermissions gates posting into a group.
type GroupPermissions struct {
	WhoCanChat       string   `json:"whoCanChat"`
	AllowedMemberIDs []string `json:"allowedMemberIds"`
}

// Group is a chat channel with a fixed member list.
type Group struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Bio         string           `json:"bio"`
	Photo       string           `json:"photo,omitempty"`
	Members     []Member         `json:"members"`
	Permissions GroupPermissions `json:"permissions"`
	CreatedAt   string           `json:"createdAt"`
	MemberCount int              `json:"memberCount,omitempty"`
}

// HasMember reports whether the (type, id) pair is in the member list.
func (g *Group) HasMember(memberType, id string) bool {
	for _, m := range g.Members {
		if m.Type == memberType && m.ID == id {
			return true
		}
	}
	return false
}

// Attachment is a stored file reference carried by a message.
type Attachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// Sender identifies who posted a message.
type Sender struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Message is a group or thread message.
type Message struct {
	ID          string       `json:"id"`
	From        Sender       `json:"from"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments"`
	TS          string       `json:"ts"`
}

// ChatDoc is the persisted chat collection: groups plus their message logs.
type ChatDoc struct {
	Groups   map[string]Group     `json:"groups"`
	Messages map[string][]Message `json:"messages"`
}

// NewChatDoc returns the empty default.
func NewChatDoc() ChatDoc {
	return ChatDoc{Groups: map[string]Group{}, Messages: map[string][]Message{}}
}

// ThreadKey builds the 1:1 thread key.
func ThreadKey(studentID, teacherID string) string {
	return fmt.Sprintf("%s|%s", studentID, teacherID)
}

// ThreadDoc is the persisted 1:1 message collection.
type ThreadDoc struct {
	Threads map[string][]Message `json:"threads"`
}

// NewThreadDoc returns the empty default.
func NewThreadDoc() ThreadDoc {
	return ThreadDoc{Threads: map[string][]Message{}}
}

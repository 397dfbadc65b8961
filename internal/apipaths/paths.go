package apipaths

import (
	"net/url"
	"strconv"
)

// Single API surface paths. Used by the gin routes and by the API client.

const (
	Session         = "/session"
	MyConversations = "/me/conversations"
	MyUsername      = "/me/username"
	MyPhoto         = "/me/photo"
	Users           = "/users"
	Conversations   = "/conversations"
	Messages        = "/messages"
	Uploads         = "/uploads"
	Liveness        = "/liveness"
	Health          = "/health"
)

func User(userID string) string              { return "/user/" + url.PathEscape(userID) }
func Conversation(convID int) string         { return Conversations + "/" + strconv.Itoa(convID) }
func ConversationMessages(convID int) string { return Conversation(convID) + "/messages" }
func Message(msgID int) string               { return Messages + "/" + strconv.Itoa(msgID) }
func MessageForward(msgID int) string        { return Message(msgID) + "/forward" }
func MessageComments(msgID int) string       { return Message(msgID) + "/comments" }
func Group(groupID int) string               { return "/groups/" + strconv.Itoa(groupID) }
func GroupMembers(groupID int) string        { return Group(groupID) + "/members" }
func GroupName(groupID int) string           { return Group(groupID) + "/name" }
func GroupPhoto(groupID int) string          { return Group(groupID) + "/photo" }

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quickchat/internal/domain"
	"quickchat/internal/service"
)

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// handleListChatUsers serves the sidebar: every other user plus a map of
// peer id -> unseen message count. Zero counts are absent from the map.
func handleListChatUsers(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		self := CurrentUser(r)

		users, unseen, err := msgSvc.ListPeersWithUnseen(r.Context(), self.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if users == nil {
			users = []*domain.User{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"users":          users,
			"unseenMessages": unseen,
		})
	}
}

// handleGetMessages returns the conversation with the user in the path, in
// chronological order. Listing flips every unseen message from that peer to
// seen; opening a conversation is the acknowledgement.
func handleGetMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		self := CurrentUser(r)
		peerID := chi.URLParam(r, "id")

		msgs, err := msgSvc.ListConversation(r.Context(), self.ID, peerID)
		if err != nil {
			writeError(w, err)
			return
		}
		if msgs == nil {
			msgs = []*domain.Message{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"messages": msgs,
		})
	}
}

func handleSendMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		self := CurrentUser(r)
		receiverID := chi.URLParam(r, "id")

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failure("invalid JSON body"))
			return
		}

		msg, err := msgSvc.Send(r.Context(), self.ID, receiverID, service.SendInput{
			Text:  req.Text,
			Image: req.Image,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success":    true,
			"newMessage": msg,
		})
	}
}

func handleMarkSeen(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID := chi.URLParam(r, "id")

		if err := msgSvc.MarkSeen(r.Context(), messageID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

package botcmd

import (
	"github.com/ivansanturion-collab/jarvis/internal/fsstore"
)

// The digest job needs a destination chat. The bot remembers the last chat
// that wrote to it in a tiny JSON file.

type chatDestination struct {
	ChatID int64 `json:"chat_id"`
}

// LoadChatID reads the remembered digest destination.
func LoadChatID(path string) (int64, bool, error) {
	var dest chatDestination
	found, err := fsstore.ReadJSON(path, &dest)
	if err != nil || !found {
		return 0, false, err
	}
	return dest.ChatID, dest.ChatID != 0, nil
}

func rememberChatID(path string, chatID int64) error {
	current, found, err := LoadChatID(path)
	if err != nil {
		return err
	}
	if found && current == chatID {
		return nil
	}
	return fsstore.WriteJSONAtomic(path, chatDestination{ChatID: chatID}, fsstore.FileOptions{})
}

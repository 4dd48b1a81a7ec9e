// Property-based tests for the chat restriction logic.
package bot

import (
	"testing"

	"pgregory.net/rapid"

	"shiritori-bot/internal/config"
)

// TestChatRestrictionProperty tests that a configured chat ID admits
// exactly that chat and no other.
func TestChatRestrictionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Group chat IDs are typically negative
		allowedChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "allowedChatID")

		cfg := &config.Config{
			Shiritori: config.ShiritoriConfig{
				ChatID: allowedChatID,
			},
		}

		testChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "testChatID")

		isAllowed := cfg.IsChatAllowed(testChatID)
		expectedIsAllowed := testChatID == allowedChatID

		if isAllowed != expectedIsAllowed {
			t.Fatalf("Chat restriction mismatch: chatID=%d, allowed=%d, expected=%v, got=%v",
				testChatID, allowedChatID, expectedIsAllowed, isAllowed)
		}
	})
}

// TestChatRestrictionAllowsConfiguredChatProperty tests that the
// configured chat is always allowed.
func TestChatRestrictionAllowsConfiguredChatProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		allowedChatID := -rapid.Int64Range(1, 1000000000).Draw(t, "allowedChatID")

		cfg := &config.Config{
			Shiritori: config.ShiritoriConfig{
				ChatID: allowedChatID,
			},
		}

		if !cfg.IsChatAllowed(allowedChatID) {
			t.Fatalf("Configured chat ID %d should be allowed", allowedChatID)
		}
	})
}

// TestUnrestrictedConfigAllowsAllChatsProperty tests that a zero chat
// ID allows every chat. This is a special case in the implementation.
func TestUnrestrictedConfigAllowsAllChatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{
			Shiritori: config.ShiritoriConfig{
				ChatID: 0,
			},
		}

		chatID := -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")

		if !cfg.IsChatAllowed(chatID) {
			t.Fatalf("With unrestricted config, chat ID %d should be allowed", chatID)
		}
	})
}

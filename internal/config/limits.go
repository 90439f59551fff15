package config

const (
	// MaxRepositoryURLLength is the maximum length for repository URLs.
	// Limited to 500 to fit in PostgreSQL VARCHAR(500); GitHub URLs
	// are far shorter in practice.
	MaxRepositoryURLLength = 500

	// MaxDescriptionLength is the maximum length for repository
	// descriptions shown in the sidebar.
	MaxDescriptionLength = 1000

	// MaxMessageLength is the maximum length for a single chat
	// message sent by a user.
	MaxMessageLength = 8000

	// DefaultHistoryLimit is the number of messages returned from the
	// chat history endpoint when no limit is given.
	DefaultHistoryLimit = 50

	// MaxHistoryLimit caps the limit query parameter on the chat
	// history endpoint.
	MaxHistoryLimit = 500
)

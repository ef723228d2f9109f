package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableSequence    = "global_sequence"
	tableUsers       = "users"
	tableWordCards   = "word_cards"
	tableErrors      = "error_records"
	tableLLMEvents   = "llm_request_events"
	tableAnswers     = "answer_events"
	tableSessionLogs = "session_events"
)

var (
	// SequenceColumns holds the columns of the global event counter.
	SequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Unique: true},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	SequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    SequenceColumns,
		PrimaryKey: []*schema.Column{SequenceColumns[0]},
	}

	// UsersColumns holds the columns of the users table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "login", Type: field.TypeString, Unique: true},
		{Name: "native_language", Type: field.TypeString, Default: ""},
		{Name: "learning_languages", Type: field.TypeString, Default: ""},
		{Name: "preferred_topics", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	UsersTable = &schema.Table{
		Name:       tableUsers,
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	// WordCardsColumns holds the columns of the word_cards table.
	WordCardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "native_text", Type: field.TypeString},
		{Name: "target_text", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "progress", Type: field.TypeInt, Default: 0},
		{Name: "last_reviewed", Type: field.TypeTime, Nullable: true},
		{Name: "next_due", Type: field.TypeTime},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString},
	}
	WordCardsTable = &schema.Table{
		Name:       tableWordCards,
		Columns:    WordCardsColumns,
		PrimaryKey: []*schema.Column{WordCardsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "word_cards_users_words",
				Columns:    []*schema.Column{WordCardsColumns[8]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "wordcard_user_id_language_next_due",
				Unique:  false,
				Columns: []*schema.Column{WordCardsColumns[8], WordCardsColumns[3], WordCardsColumns[6]},
			},
		},
	}

	// ErrorRecordsColumns holds the columns of the error ledger.
	ErrorRecordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "occurrences", Type: field.TypeInt, Default: 1},
		{Name: "first_seen", Type: field.TypeTime},
		{Name: "last_seen", Type: field.TypeTime},
	}
	ErrorRecordsTable = &schema.Table{
		Name:       tableErrors,
		Columns:    ErrorRecordsColumns,
		PrimaryKey: []*schema.Column{ErrorRecordsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "errorrecord_user_id_language_description",
				Unique:  true,
				Columns: []*schema.Column{ErrorRecordsColumns[1], ErrorRecordsColumns[2], ErrorRecordsColumns[3]},
			},
		},
	}

	// LLMRequestEventsColumns holds the columns of the LLM call log.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	LLMRequestEventsTable = &schema.Table{
		Name:       tableLLMEvents,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
		},
	}

	// AnswerEventsColumns holds the columns of the answer log.
	AnswerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "word_id", Type: field.TypeString},
		{Name: "language", Type: field.TypeString},
		{Name: "task_type", Type: field.TypeString},
		{Name: "expected", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString},
		{Name: "outcome", Type: field.TypeString},
		{Name: "error_description", Type: field.TypeString, Default: ""},
		{Name: "progress_before", Type: field.TypeInt},
		{Name: "progress_after", Type: field.TypeInt},
		{Name: "degraded", Type: field.TypeBool, Default: false},
	}
	AnswerEventsTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    AnswerEventsColumns,
		PrimaryKey: []*schema.Column{AnswerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_user_id_timestamp", Columns: []*schema.Column{AnswerEventsColumns[4], AnswerEventsColumns[2]}},
			{Name: "answerevent_session_id", Columns: []*schema.Column{AnswerEventsColumns[3]}},
		},
	}

	// SessionEventsColumns holds the columns of the session log.
	SessionEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "action", Type: field.TypeString},
		{Name: "words", Type: field.TypeInt, Default: 0},
		{Name: "answered", Type: field.TypeInt, Default: 0},
		{Name: "correct", Type: field.TypeInt, Default: 0},
		{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	}
	SessionEventsTable = &schema.Table{
		Name:       tableSessionLogs,
		Columns:    SessionEventsColumns,
		PrimaryKey: []*schema.Column{SessionEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "sessionevent_session_id", Columns: []*schema.Column{SessionEventsColumns[3]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SequenceTable,
		UsersTable,
		WordCardsTable,
		ErrorRecordsTable,
		LLMRequestEventsTable,
		AnswerEventsTable,
		SessionEventsTable,
	}
)

func init() {
	WordCardsTable.ForeignKeys[0].RefTable = UsersTable
}

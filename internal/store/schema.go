package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Every event table starts with the same base columns: an auto-increment
// id, the global sequence number, and a UTC timestamp.
func eventColumns() []*schema.Column {
	return []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
}

func eventTable(name string, cols ...*schema.Column) *schema.Table {
	base := eventColumns()
	t := schema.NewTable(name).AddPrimary(base[0])
	for _, c := range base[1:] {
		t.AddColumn(c)
	}
	for _, c := range cols {
		t.AddColumn(c)
	}
	return t.AddIndex(name+"_timestamp", false, []string{"timestamp"})
}

var (
	// LLMRequestEventsTable records every LLM API call.
	LLMRequestEventsTable = eventTable("llm_request_events",
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "session_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	).AddIndex("llm_request_events_purpose", false, []string{"purpose"})

	// SessionEventsTable records practice session starts and ends.
	SessionEventsTable = eventTable("session_events",
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "kind", Type: field.TypeString},
		&schema.Column{Name: "topic", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "grade", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "difficulty", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "test_id", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "questions_total", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "score", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "duration_secs", Type: field.TypeInt, Default: 0},
	).AddIndex("session_events_session_id", false, []string{"session_id"})

	// AttemptEventsTable records every submitted answer.
	AttemptEventsTable = eventTable("attempt_events",
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "exercise_id", Type: field.TypeString},
		&schema.Column{Name: "statement", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "answer", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "correct_answer", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "unvalidated", Type: field.TypeBool, Default: false},
		&schema.Column{Name: "attempt_number", Type: field.TypeInt},
		&schema.Column{Name: "hints_used", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "time_ms", Type: field.TypeInt64, Default: 0},
	).AddIndex("attempt_events_session_id", false, []string{"session_id"})

	// HintEventsTable records every hint shown.
	HintEventsTable = eventTable("hint_events",
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "exercise_id", Type: field.TypeString},
		&schema.Column{Name: "statement", Type: field.TypeString, Size: 2147483647},
		&schema.Column{Name: "hint_text", Type: field.TypeString, Size: 2147483647},
	)

	// Tables lists every table Open migrates.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		SessionEventsTable,
		AttemptEventsTable,
		HintEventsTable,
	}
)

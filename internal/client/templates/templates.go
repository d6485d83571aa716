// Package templates holds the starter content offered when creating a lab
// record.
package templates

import (
	"strconv"
	"strings"

	"github.com/dmitrijs2005/labscribe/internal/client/records"
)

type Template struct {
	ID          string
	Title       string
	Description string
	Fields      records.Fields
}

var builtin = []Template{
	{
		ID:          "programming",
		Title:       "Programming Lab",
		Description: "Coding experiments and algorithm implementations",
		Fields: records.Fields{
			Subject:       "Programming",
			ExperimentAim: "To implement and test [algorithm/concept]",
			Theory:        "Write about the theoretical concept, algorithm details, time complexity, and use cases.",
			Tools:         "Programming Language, IDE, Compiler",
		},
	},
	{
		ID:          "networking",
		Title:       "Computer Networks",
		Description: "Network simulation and protocol experiments",
		Fields: records.Fields{
			Subject:       "Computer Networks",
			ExperimentAim: "To simulate and analyze [network protocol/concept]",
			Theory:        "Explain the networking concept, protocol specifications, OSI layer details, and practical applications.",
			Tools:         "Network Simulator (NS2/NS3/Packet Tracer), Wireshark",
		},
	},
	{
		ID:          "database",
		Title:       "Database Management",
		Description: "SQL queries, database design and management",
		Fields: records.Fields{
			Subject:       "Database Management Systems",
			ExperimentAim: "To design and implement [database concept]",
			Theory:        "Describe database concepts, normalization, ER diagrams, and SQL fundamentals.",
			Tools:         "MySQL/PostgreSQL, SQL Workbench, phpMyAdmin",
		},
	},
	{
		ID:          "hardware",
		Title:       "Computer Hardware",
		Description: "Digital electronics and hardware experiments",
		Fields: records.Fields{
			Subject:       "Computer Hardware",
			ExperimentAim: "To study and verify [hardware concept/circuit]",
			Theory:        "Explain the hardware component, circuit design, working principle, and applications.",
			Tools:         "Logic Gates, Breadboard, IC Chips, Multimeter",
		},
	},
	{
		ID:          "chemistry",
		Title:       "Chemistry Lab",
		Description: "Chemical reactions and analysis experiments",
		Fields: records.Fields{
			Subject:       "Chemistry",
			ExperimentAim: "To perform and analyze [chemical reaction/process]",
			Theory:        "Describe the chemical concepts, reaction mechanisms, formulas, and expected outcomes.",
			Tools:         "Beakers, Test Tubes, Chemicals, pH Meter, Burette",
		},
	},
	{
		ID:          "physics",
		Title:       "Physics Lab",
		Description: "Physics experiments and measurements",
		Fields: records.Fields{
			Subject:       "Physics",
			ExperimentAim: "To verify [physics law/principle]",
			Theory:        "Explain the physical concepts, laws, formulas, and theoretical basis of the experiment.",
			Tools:         "Apparatus, Measuring Instruments, Weights, Scales",
		},
	},
}

// All returns the built-in templates in display order.
func All() []Template {
	out := make([]Template, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds a template by id or by 1-based position, e.g. "physics" or "6".
func Lookup(key string) (Template, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, t := range builtin {
		if t.ID == key || strconv.Itoa(i+1) == key {
			return t, true
		}
	}
	return Template{}, false
}

// Apply prefills f with the template's non-empty fields, leaving the rest
// as they are.
func (t Template) Apply(f records.Fields) records.Fields {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&f.Subject, t.Fields.Subject)
	set(&f.ExperimentTitle, t.Fields.ExperimentTitle)
	set(&f.ExperimentAim, t.Fields.ExperimentAim)
	set(&f.Theory, t.Fields.Theory)
	set(&f.Tools, t.Fields.Tools)
	return f
}

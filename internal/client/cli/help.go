package cli

import (
	"fmt"
	"io"
	"strings"
)

type faq struct {
	question string
	answer   string
}

type helpTopic struct {
	id    string
	title string
	faqs  []faq
}

var helpTopics = []helpTopic{
	{
		id:    "start",
		title: "Getting started",
		faqs: []faq{
			{"How do I create a new lab record?", "Sign in and type 'new'. The wizard walks through six steps: student info, experiment, theory, code, output and conclusion."},
			{"What information do I need to provide?", "Student name, roll number, subject, experiment title, aim, theory, tools, code, output and conclusion. Every field is required."},
			{"Can I start from a template?", "Type 'templates' to see them, then 'new <id>' or 'new <#>' to prefill the subject, aim and theory."},
		},
	},
	{
		id:    "records",
		title: "Managing records",
		faqs: []faq{
			{"How do I view my saved records?", "Type 'list'. Records are shown newest first with a number you can use in other commands."},
			{"How do I find a specific record?", "Type 'search <query>'. It matches experiment title, subject and student name, ignoring case."},
			{"How do I delete a record?", "Type 'delete <#>' or 'delete <id>' and confirm. The record is removed from the server."},
		},
	},
	{
		id:    "account",
		title: "Account and data",
		faqs: []faq{
			{"Where is my data stored?", "Records and your profile live on the labscribe server. The local database only keeps your session, so you stay signed in between runs."},
			{"How do I see my statistics?", "Type 'analytics' for totals, this month, this week and a per-subject breakdown."},
			{"What happens if I reset app data?", "'reset' wipes the local database and signs you out. Records on the server are not touched."},
		},
	},
}

// printHelpTopic writes the topic named by arg, or the topic list when arg is
// empty or "topics".
func printHelpTopic(w io.Writer, arg string) {
	if arg == "" || arg == "topics" {
		fmt.Fprintln(w, "Help topics:")
		for _, t := range helpTopics {
			fmt.Fprintf(w, "  %-8s %s\n", t.id, t.title)
		}
		fmt.Fprintln(w, "Type 'help <topic>' to read one.")
		return
	}
	for _, t := range helpTopics {
		if strings.EqualFold(t.id, arg) {
			fmt.Fprintln(w, t.title)
			for _, f := range t.faqs {
				fmt.Fprintf(w, "\n  %s\n  %s\n", f.question, f.answer)
			}
			return
		}
	}
	fmt.Fprintln(w, "Unknown help topic:", arg)
}

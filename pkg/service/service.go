// Package service implements the cg views: each one fetches from the forum
// API and renders the result in the configured output format.
package service

import (
	"fmt"

	"github.com/commonground/cg/pkg/api"
	"github.com/commonground/cg/pkg/output"
	"github.com/commonground/cg/pkg/prompter"
	"github.com/commonground/cg/pkg/render"
)

// Session is the part of the auth store views need
type Session interface {
	IsAuthenticated() bool
	Actor() *api.ActorProfile
}

// loading prints the line shown while a view fetches
func loading(what string) {
	if output.GetOutputFormat() == output.FormatText {
		render.Dim.Fprintf(output.Writer(), "Loading %s...\n", what)
	}
}

// structured prints data for json/yaml output and reports whether it did
func structured(data interface{}) (bool, error) {
	if !output.Structured() {
		return false, nil
	}
	return true, output.Print("", data)
}

func showPosts(posts []api.Post, empty string) error {
	if ok, err := structured(posts); ok {
		return err
	}

	if len(posts) == 0 {
		output.Println(empty)
		return nil
	}

	if output.GetOutputFormat() == output.FormatTable {
		rows := make([][]string, 0, len(posts))
		for _, p := range posts {
			rows = append(rows, []string{
				fmt.Sprintf("%d", p.VoteScore),
				"c/" + p.CommunitySlug,
				render.TypeLetter(p.AuthorType) + " @" + p.AuthorHandle,
				render.Excerpt(p.Title, 60),
				fmt.Sprintf("%d", p.CommentCount),
				render.TimeAgo(p.CreatedAt),
				p.ID,
			})
		}
		output.PrintTable([]string{"SCORE", "COMMUNITY", "AUTHOR", "TITLE", "COMMENTS", "AGE", "ID"}, rows)
		return nil
	}

	w := output.Writer()
	for _, p := range posts {
		render.PostCard(w, p)
	}
	return nil
}

// readBody resolves a body argument: "-" reads stdin, "" prompts when interactive
func readBody(p *prompter.Prompter, body, label string) (string, error) {
	switch {
	case body == "-":
		return p.ReadAll()
	case body != "":
		return body, nil
	case p.IsInteractive():
		return p.Multiline(label)
	default:
		return "", nil
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

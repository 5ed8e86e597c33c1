package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/iudanet/communitysync/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// Однострочные шаблоны записей по коллекциям. .Time - время записи, .View - типизированное представление.
var lineTemplates = map[string]string{
	models.CollectionUsers:          `{{.View.Name}}{{if .View.Email}} <{{.View.Email}}>{{end}} ({{.View.ID}})`,
	models.CollectionGroups:         `{{.View.Name}}{{if .View.Description}}: {{.View.Description}}{{end}} ({{.View.ID}})`,
	models.CollectionPosts:          `[{{.Time}}] {{.View.UserName}}: {{.View.Content}}{{if .View.GroupID}} [group {{.View.GroupID}}]{{end}} ({{.View.ID}})`,
	models.CollectionComments:       `[{{.Time}}] {{.View.UserName}} on {{.View.PostID}}: {{.View.Content}}`,
	models.CollectionProfiles:       `{{or .View.DisplayName .View.ID}}{{if .View.Bio}}: {{.View.Bio}}{{end}}`,
	models.CollectionMemberships:    `{{.View.UserID}} in group {{.View.GroupID}}`,
	models.CollectionLikes:          `{{.View.UserID}} likes {{.View.PostID}}`,
	models.CollectionFriendships:    `{{.View.RequesterID}} -> {{.View.AddresseeID}} ({{.View.Status}})`,
	models.CollectionDirectMessages: `[{{.Time}}] {{.View.SenderName}} -> {{.View.RecipientID}}: {{.View.Content}}`,
	models.CollectionMessages:       `[{{.Time}}] {{.View.UserName}}: {{.View.Content}}`,
}

const recordDetailsTemplate = `
=== {{.Collection}} record ===

ID:      {{.ID}}
{{- if .Time}}
Created: {{.Time}}
{{- end}}
{{- if .Pending}}
Status:  sending
{{- end}}
{{range .Fields}}
{{.Key}}: {{.Value}}
{{- end}}
`

var (
	lines   = parseLineTemplates()
	details = template.Must(template.New("details").Parse(recordDetailsTemplate))
)

func parseLineTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(lineTemplates))
	for collection, text := range lineTemplates {
		out[collection] = template.Must(template.New(collection).Parse(text))
	}
	return out
}

// newView возвращает пустое типизированное представление записи коллекции
func newView(collection string) any {
	switch collection {
	case models.CollectionUsers:
		return &models.User{}
	case models.CollectionGroups:
		return &models.Group{}
	case models.CollectionPosts:
		return &models.Post{}
	case models.CollectionComments:
		return &models.Comment{}
	case models.CollectionProfiles:
		return &models.Profile{}
	case models.CollectionMemberships:
		return &models.Membership{}
	case models.CollectionLikes:
		return &models.Like{}
	case models.CollectionFriendships:
		return &models.Friendship{}
	case models.CollectionDirectMessages:
		return &models.DirectMessage{}
	case models.CollectionMessages:
		return &models.ChatMessage{}
	default:
		return nil
	}
}

type lineData struct {
	View any
	Time string
}

type field struct {
	Key   string
	Value string
}

type detailsData struct {
	Collection string
	ID         string
	Time       string
	Fields     []field
	Pending    bool
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "--"
	}
	return t.UTC().Format(timeLayout)
}

// renderLine форматирует запись в одну строку.
// Запись, которую не удалось разобрать, выводится как JSON.
func renderLine(rec *models.Record) string {
	line, err := renderView(rec)
	if err != nil {
		raw, _ := json.Marshal(rec.Fields)
		line = string(raw)
	}
	if rec.Pending {
		line += " (sending)"
	}
	return line
}

func renderView(rec *models.Record) (string, error) {
	tmpl, ok := lines[rec.Collection]
	view := newView(rec.Collection)
	if !ok || view == nil {
		return "", fmt.Errorf("no template for collection %s", rec.Collection)
	}
	if err := rec.Decode(view); err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, lineData{View: view, Time: formatTime(rec.CreatedAt)}); err != nil {
		return "", fmt.Errorf("failed to render %s record: %w", rec.Collection, err)
	}
	return b.String(), nil
}

// renderDetails форматирует все поля записи
func renderDetails(rec *models.Record) (string, error) {
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		if k == models.FieldID || k == models.FieldClientToken {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	data := detailsData{
		Collection: rec.Collection,
		ID:         rec.ID,
		Pending:    rec.Pending,
	}
	if !rec.CreatedAt.IsZero() {
		data.Time = formatTime(rec.CreatedAt)
	}
	for _, k := range keys {
		data.Fields = append(data.Fields, field{Key: k, Value: formatValue(rec.Fields[k])})
	}

	var b strings.Builder
	if err := details.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render record: %w", err)
	}
	return b.String(), nil
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case map[string]any, []any:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	default:
		return fmt.Sprint(t)
	}
}

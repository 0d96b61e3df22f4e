package asana

// Wire shapes for the subset of the Asana REST API this assistant touches.
// Every response arrives wrapped in a {"data": ...} envelope.

type Task struct {
	GID          string             `json:"gid"`
	Name         string             `json:"name,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	Completed    bool               `json:"completed,omitempty"`
	CompletedAt  string             `json:"completed_at,omitempty"`
	DueOn        string             `json:"due_on,omitempty"`
	Assignee     *User              `json:"assignee,omitempty"`
	CustomFields []CustomFieldValue `json:"custom_fields,omitempty"`
}

type CustomFieldValue struct {
	GID       string      `json:"gid,omitempty"`
	Name      string      `json:"name,omitempty"`
	EnumValue *EnumOption `json:"enum_value,omitempty"`
}

type EnumOption struct {
	GID     string `json:"gid"`
	Name    string `json:"name,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name,omitempty"`
}

type User struct {
	GID        string      `json:"gid"`
	Name       string      `json:"name,omitempty"`
	Email      string      `json:"email,omitempty"`
	Workspaces []Workspace `json:"workspaces,omitempty"`
}

type Workspace struct {
	GID  string `json:"gid"`
	Name string `json:"name,omitempty"`
}

type Project struct {
	GID                 string               `json:"gid"`
	Name                string               `json:"name,omitempty"`
	CustomFieldSettings []CustomFieldSetting `json:"custom_field_settings,omitempty"`
}

type CustomFieldSetting struct {
	CustomField *CustomFieldDef `json:"custom_field,omitempty"`
}

type CustomFieldDef struct {
	GID         string       `json:"gid"`
	Name        string       `json:"name,omitempty"`
	EnumOptions []EnumOption `json:"enum_options,omitempty"`
}

// NewTask is the task creation payload. CustomFields maps field GID to enum
// option GID.
type NewTask struct {
	Name         string            `json:"name"`
	Notes        string            `json:"notes,omitempty"`
	Projects     []string          `json:"projects,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	Assignee     string            `json:"assignee,omitempty"`
	DueOn        string            `json:"due_on,omitempty"`
}

// EnumEnabled reports whether an enum option is usable; Asana omits the flag
// for enabled options.
func (o EnumOption) EnumEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

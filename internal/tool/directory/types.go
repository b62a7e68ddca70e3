package directory

import "fmt"

// ListFilesRequest is the decoded argument set for list_files.
type ListFilesRequest struct {
	MissionName string `mapstructure:"mission_name" json:"mission_name"`
	CodeOnly    bool   `mapstructure:"code_only" json:"code_only,omitempty"`
}

// Validate checks required fields.
func (r *ListFilesRequest) Validate() error {
	if r.MissionName == "" {
		return ErrMissionRequired
	}
	return nil
}

func (r *ListFilesRequest) String() string {
	if r.CodeOnly {
		return fmt.Sprintf("%s (code only)", r.MissionName)
	}
	return r.MissionName
}

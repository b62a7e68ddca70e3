package shell

import "strings"

// ValidateCodeRequest is the decoded argument set for validate_code.
type ValidateCodeRequest struct {
	Filepath    string   `mapstructure:"filepath" json:"filepath"`
	CommandList []string `mapstructure:"command_list" json:"command_list"`
}

// Validate checks required fields.
func (r *ValidateCodeRequest) Validate() error {
	if r.Filepath == "" {
		return ErrPathRequired
	}
	if len(r.CommandList) == 0 || strings.TrimSpace(r.CommandList[0]) == "" {
		return &CommandRequiredError{}
	}
	return nil
}

func (r *ValidateCodeRequest) String() string {
	return r.Filepath + " via " + strings.Join(r.CommandList, " ")
}

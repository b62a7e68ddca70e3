package file

// ReadFileRequest is the decoded argument set for read_file.
type ReadFileRequest struct {
	Filepath string `mapstructure:"filepath" json:"filepath"`
}

// Validate checks required fields.
func (r *ReadFileRequest) Validate() error {
	if r.Filepath == "" {
		return ErrPathRequired
	}
	return nil
}

func (r *ReadFileRequest) String() string { return r.Filepath }

// RefactorFileRequest is the decoded argument set for refactor_file.
type RefactorFileRequest struct {
	Filepath  string `mapstructure:"filepath" json:"filepath"`
	Objective string `mapstructure:"objective" json:"objective"`
}

// Validate checks required fields.
func (r *RefactorFileRequest) Validate() error {
	if r.Filepath == "" {
		return ErrPathRequired
	}
	if r.Objective == "" {
		return ErrObjectiveRequired
	}
	return nil
}

func (r *RefactorFileRequest) String() string { return r.Filepath + ": " + r.Objective }

package request

type BranchRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
}

type BranchUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	Address *string `json:"address"`
}

package fundraise

// UpdateFormDTO carries field edits; nil fields are left untouched.
type UpdateFormDTO struct {
	Title           *string `json:"title" form:"title"`
	AmountRequested *string `json:"amountRequested" form:"amountRequested"`
	Description     *string `json:"description" form:"description"`
}

// PickImageDTO describes the crop the user confirmed in the picker.
type PickImageDTO struct {
	Canceled bool `form:"canceled"`
	CropX    int  `form:"crop_x" binding:"omitempty,min=0"`
	CropY    int  `form:"crop_y" binding:"omitempty,min=0"`
	CropW    int  `form:"crop_w" binding:"omitempty,min=0"`
	CropH    int  `form:"crop_h" binding:"omitempty,min=0"`
	Quality  int  `form:"quality" binding:"omitempty,min=1,max=100"`
}

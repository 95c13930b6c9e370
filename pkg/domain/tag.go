package domain

// Tag labels transactions.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTagInput creates a tag.
type CreateTagInput struct {
	ClientMutationID string `json:"clientMutationId,omitempty"`
	Name             string `json:"name" validate:"required,max=50"`
}

// UpdateTagInput renames a tag.
type UpdateTagInput struct {
	ClientMutationID string  `json:"clientMutationId,omitempty"`
	ID               string  `json:"id" validate:"required"`
	Name             *string `json:"name,omitempty" validate:"omitempty,max=50"`
}

// TagFilter narrows tag lists.
type TagFilter struct {
	IDContains   *string `json:"id_Icontains,omitempty"`
	NameContains *string `json:"name_Icontains,omitempty"`
}

// TagOrder is a sort key understood by listTags.
type TagOrder string

const (
	TagIDAsc    TagOrder = "ID_ASC"
	TagIDDesc   TagOrder = "ID_DESC"
	TagNameAsc  TagOrder = "NAME_ASC"
	TagNameDesc TagOrder = "NAME_DESC"
	TagUserAsc  TagOrder = "USER_ASC"
	TagUserDesc TagOrder = "USER_DESC"
)

// TagOrders lists every valid TagOrder.
var TagOrders = []TagOrder{TagIDAsc, TagIDDesc, TagNameAsc, TagNameDesc, TagUserAsc, TagUserDesc}

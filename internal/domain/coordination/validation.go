package coordination

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/propside/syncd/internal/snapshot"
)

// Document types rules may link. Matches the artifact types the authoring
// platform produces.
var knownDocTypes = []any{
	"proposal",
	"cover_letter",
	"contract",
	"pricing_sheet",
	"cost_summary",
	"executive_summary",
	"statement_of_work",
}

// CreateRuleRequest carries the fields needed to define a rule. Description
// is free text for operators; it is carried through previews and listings
// but never interpreted.
type CreateRuleRequest struct {
	Description   string    `json:"description,omitempty"`
	SourceDocType string    `json:"source_doc_type"`
	SourceField   string    `json:"source_field"`
	TargetDocType string    `json:"target_doc_type"`
	TargetField   string    `json:"target_field"`
	Transform     Transform `json:"transform"`
	CreatedBy     *string   `json:"created_by,omitempty"`
}

// Validate checks rule shape: known doc types, well-formed dot paths, a
// known transform, and no self-referential doc type pair.
func (r CreateRuleRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.SourceDocType, validation.Required, validation.In(knownDocTypes...)),
		validation.Field(&r.TargetDocType, validation.Required, validation.In(knownDocTypes...)),
		validation.Field(&r.SourceField, validation.Required, validation.By(fieldPathRule)),
		validation.Field(&r.TargetField, validation.Required, validation.By(fieldPathRule)),
		validation.Field(&r.Transform, validation.Required, validation.In(
			TransformCopy, TransformFormat, TransformAggregate, TransformReference)),
	)
	if err != nil {
		return err
	}
	if r.SourceDocType == r.TargetDocType {
		return validation.Errors{
			"target_doc_type": validation.NewError(
				"validation_self_reference", "source and target document types must differ"),
		}
	}
	return nil
}

func fieldPathRule(value any) error {
	path, _ := value.(string)
	if err := snapshot.ValidatePath(path); err != nil {
		return validation.NewError("validation_field_path", "must be a dot-separated field path")
	}
	return nil
}

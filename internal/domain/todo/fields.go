package todo

import (
	"maps"
	"slices"
)

type fieldCheck func(value any) bool

// mutableFields are the attributes a client may change after creation.
var mutableFields = map[string]fieldCheck{
	AttrName:          isNonEmptyString,
	AttrDueDate:       isString,
	AttrDone:          isBool,
	AttrAttachmentURL: isString,
}

func isString(value any) bool {
	_, ok := value.(string)
	return ok
}

func isNonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && s != ""
}

func isBool(value any) bool {
	_, ok := value.(bool)
	return ok
}

// ValidateFields checks a client update against the mutable attributes of a
// Todo. Fields are checked in name order so the reported field is stable.
func ValidateFields(fields Fields) error {
	if len(fields) == 0 {
		return &UpdateError{Reason: ReasonNoFieldsProvided, Err: ErrNoFieldsProvided}
	}

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if name == AttrUserID || name == AttrTodoID {
			return &UpdateError{Reason: ReasonInvalidFieldName, Field: name, Err: ErrKeyFieldUpdate}
		}

		check, ok := mutableFields[name]
		if !ok {
			return &UpdateError{Reason: ReasonInvalidFieldName, Field: name, Err: ErrFieldNotMutable}
		}
		if !check(fields[name]) {
			return &UpdateError{Reason: ReasonInvalidFieldValue, Field: name, Err: ErrInvalidFieldType}
		}
	}

	return nil
}

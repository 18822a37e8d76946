package todo

// Todo is one task owned by a user. UserID is the partition key and TodoID
// the sort key.
type Todo struct {
	UserID        string `json:"userId"                  dynamodbav:"userId"`
	TodoID        string `json:"todoId"                  dynamodbav:"todoId"`
	CreatedAt     string `json:"createdAt"               dynamodbav:"createdAt"`
	Name          string `json:"name"                    dynamodbav:"name"`
	DueDate       string `json:"dueDate"                 dynamodbav:"dueDate"`
	Done          bool   `json:"done"                    dynamodbav:"done"`
	AttachmentURL string `json:"attachmentUrl,omitempty" dynamodbav:"attachmentUrl,omitempty"`
}

// Key addresses a single Todo.
type Key struct {
	UserID string `dynamodbav:"userId"`
	TodoID string `dynamodbav:"todoId"`
}

func (t *Todo) Key() Key {
	return Key{UserID: t.UserID, TodoID: t.TodoID}
}

// Attribute names of a stored Todo.
const (
	AttrUserID        = "userId"
	AttrTodoID        = "todoId"
	AttrCreatedAt     = "createdAt"
	AttrName          = "name"
	AttrDueDate       = "dueDate"
	AttrDone          = "done"
	AttrAttachmentURL = "attachmentUrl"
)

// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xas

// Request is one call to the action endpoint. Build it with the New*
// constructors; each fills exactly the fields its action uses.
type Request struct {
	Action Action `json:"action"`
	Params any    `json:"params"`
	// Changes is omitted when nil; commit fills it and runtimeOperation
	// sends it empty.
	Changes Changes `json:"changes,omitzero"`

	// Inlined into the top-level body for runtimeOperation only.
	*OperationCall
}

// OperationCall holds the top-level fields of a runtimeOperation request.
type OperationCall struct {
	OperationID     string         `json:"operationId"`
	ValidationGUIDs []string       `json:"validationGuids"`
	Objects         []Object       `json:"objects"`
	ProfileData     map[string]any `json:"profiledata"`
}

// Changes maps guid -> attribute -> new value.
type Changes map[string]map[string]ChangeValue

// ChangeValue wraps one attribute value in a commit.
type ChangeValue struct {
	Value any `json:"value"`
}

// LoginParams are the params of a login request.
type LoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// XPathParams are the params of a retrieve_by_xpath request.
type XPathParams struct {
	XPath  string `json:"xpath"`
	Schema Schema `json:"schema"`
}

// IDsParams are the params of a retrieve_by_ids request.
type IDsParams struct {
	IDs    []string `json:"ids"`
	Schema Schema   `json:"schema"`
}

// CommitParams are the params of a commit request.
type CommitParams struct {
	GUIDs []string `json:"guids"`
}

// Schema bounds a retrieval. A zero Amount is omitted.
type Schema struct {
	Amount int `json:"amount,omitzero"`
}

// NewLogin builds a login request.
func NewLogin(username, password string) Request {
	return Request{
		Action: ActionLogin,
		Params: LoginParams{Username: username, Password: password},
	}
}

// NewGetSessionData builds a get_session_data request.
func NewGetSessionData() Request {
	return Request{Action: ActionGetSessionData, Params: map[string]any{}}
}

// NewRetrieveByXPath builds a retrieve_by_xpath request bounded to amount objects.
func NewRetrieveByXPath(xpath string, amount int) Request {
	return Request{
		Action: ActionRetrieveByXPath,
		Params: XPathParams{XPath: xpath, Schema: Schema{Amount: amount}},
	}
}

// NewRetrieveByIDs builds a retrieve_by_ids request.
func NewRetrieveByIDs(ids ...string) Request {
	return Request{
		Action: ActionRetrieveByIDs,
		Params: IDsParams{IDs: append([]string{}, ids...), Schema: Schema{}},
	}
}

// NewCommit builds a commit request setting one attribute of one object.
func NewCommit(guid, attribute string, value any) Request {
	return Request{
		Action: ActionCommit,
		Params: CommitParams{GUIDs: []string{guid}},
		Changes: Changes{
			guid: {attribute: ChangeValue{Value: value}},
		},
	}
}

// NewRuntimeOperation builds a runtimeOperation request with empty
// params, changes and objects.
func NewRuntimeOperation(operationID string) Request {
	return Request{
		Action:  ActionRuntimeOperation,
		Params:  map[string]any{},
		Changes: Changes{},
		OperationCall: &OperationCall{
			OperationID:     operationID,
			ValidationGUIDs: []string{},
			Objects:         []Object{},
			ProfileData:     map[string]any{},
		},
	}
}

// Validate rejects requests whose action is outside the supported set.
func (r Request) Validate() error {
	if !r.Action.Valid() {
		return &UnknownActionError{Action: r.Action}
	}
	return nil
}

// XPathForType returns the query selecting every instance of typeName.
func XPathForType(typeName string) string {
	return "//" + typeName
}

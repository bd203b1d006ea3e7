package models

// Dataset is the output of one generation run.
type Dataset struct {
	Surveys   []Survey   `json:"surveys"`
	Users     []User     `json:"users"`
	Responses []Response `json:"responses"`
}

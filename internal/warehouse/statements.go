package warehouse

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// statementRequest is the request body for the Snowflake SQL Statement API.
type statementRequest struct {
	Statement string `json:"statement"`
	Database  string `json:"database,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Warehouse string `json:"warehouse,omitempty"`
	Role      string `json:"role,omitempty"`
}

type statementRowType struct {
	Name string `json:"name"`
}

type statementResponse struct {
	Data              [][]any `json:"data"`
	ResultSetMetaData struct {
		RowType []statementRowType `json:"rowType"`
	} `json:"resultSetMetaData"`
}

// Result holds the column names and stringified rows of one statement.
type Result struct {
	Columns []string
	Rows    [][]string
}

// SessionInfo describes the Snowflake session as seen by the server.
type SessionInfo struct {
	Version string
	User    string
	Role    string
}

func (c *Client) statementsURL() string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, "api/v2/statements")
	return u.String()
}

// Execute runs a single SQL statement in the client's session context and
// returns the result set.
func (c *Client) Execute(ctx context.Context, statement string) (*Result, error) {
	payload := statementRequest{
		Statement: statement,
		Database:  c.database,
		Schema:    c.schema,
	}
	if strings.TrimSpace(c.warehouse) != "" {
		payload.Warehouse = c.warehouse
	}
	if strings.TrimSpace(c.role) != "" {
		payload.Role = c.role
	}

	var resp statementResponse
	if err := c.doJSON(ctx, http.MethodPost, c.statementsURL(), payload, &resp); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, col := range resp.ResultSetMetaData.RowType {
		result.Columns = append(result.Columns, col.Name)
	}
	for _, row := range resp.Data {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = stringifyCell(v)
		}
		result.Rows = append(result.Rows, cells)
	}
	return result, nil
}

// Session runs the canonical session query and returns version, user and
// role as reported by the server.
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	result, err := c.Execute(ctx, "SELECT CURRENT_VERSION(), CURRENT_USER(), CURRENT_ROLE()")
	if err != nil {
		return nil, err
	}
	if len(result.Rows) == 0 || len(result.Rows[0]) < 3 {
		return nil, fmt.Errorf("session query: unexpected result shape")
	}
	row := result.Rows[0]
	return &SessionInfo{Version: row[0], User: row[1], Role: row[2]}, nil
}

// stringifyCell converts a SQL API cell value to its display string. The
// API returns most values as strings; NULL arrives as nil.
func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

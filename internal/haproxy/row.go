package haproxy

// Row is one line of the stats report keyed by CSV column name.
type Row map[string]string

// Get returns the value of column key, or "" when the column is missing.
func (r Row) Get(key string) string {
	return r[key]
}

// ProxyName is the pxname column.
func (r Row) ProxyName() string {
	return r["pxname"]
}

// ServiceName is the svname column, e.g. FRONTEND, BACKEND or a server name.
func (r Row) ServiceName() string {
	return r["svname"]
}

// Status is the status column, e.g. UP, DOWN, OPEN or "no check".
func (r Row) Status() string {
	return r["status"]
}

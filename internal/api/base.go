package api

import "time"

// apiPrefix is prepended to every engine endpoint.
const apiPrefix = "/v1"

// DefaultTable is the table records live in when the config does not name one.
const DefaultTable = "data_files"

// DefaultTimeout bounds every HTTP call made by a Client.
const DefaultTimeout = 30 * time.Second

package bridge

// Commands served by the host's HTTP plugin.
const (
	CmdFetch         = "plugin:http|fetch"
	CmdFetchSend     = "plugin:http|fetch_send"
	CmdFetchReadBody = "plugin:http|fetch_read_body"
	CmdFetchCancel   = "plugin:http|fetch_cancel"
)

// Commands lists every command in call order.
var Commands = []string{CmdFetch, CmdFetchSend, CmdFetchReadBody, CmdFetchCancel}

// FetchArgs are the arguments of CmdFetch.
type FetchArgs struct {
	ClientConfig ClientConfig `json:"clientConfig" validate:"required"`
}

// RIDArgs are the arguments of CmdFetchSend, CmdFetchReadBody and CmdFetchCancel.
type RIDArgs struct {
	RID ResourceID `json:"rid"`
}

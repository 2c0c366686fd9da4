package protocol

// Command verbs understood by the IM920s. Each is sent as VERB[ args]\r\n.
const (
	VerbEnableWriting   = "ENWR"
	VerbSetNodeNumber   = "STNN"
	VerbReadNodeNumber  = "RDNN"
	VerbSetGroupNumber  = "STGN"
	VerbReadGroupNumber = "RDGN"
	VerbReadIdentity    = "RDID"
	VerbSoftReset       = "SRST"
	VerbFactoryClear    = "PCLR"
	VerbEnableCharIO    = "ECIO"
	VerbDisableCharIO   = "DCIO"
	VerbBroadcastSend   = "TXDA"
	VerbUnicastSend     = "TXDU"
	VerbReadSettings    = "RPRM"
	VerbSetNetworkMode  = "STNM"
	VerbReadNetworkMode = "RDNM"
	VerbEnableAck       = "ENAK"
	VerbDisableAck      = "DSAK"
)

// Reply tokens
const (
	ReplyOK = "OK"
	ReplyNG = "NG"

	// GroupRegisteredToken is emitted by a slave once it has taken over the
	// master's group number.
	GroupRegisteredToken = "GRNOREGD"
)

// MasterNodeNumber is the node number reserved for the group master
const MasterNodeNumber = "0001"

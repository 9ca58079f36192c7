package command

import (
	"testing"

	"github.com/ProtonMail/photon/imap/encoder"
	goimap "github.com/emersion/go-imap"
	"github.com/stretchr/testify/require"
)

func encodeString(t *testing.T, part StreamPart, options encoder.Options) string {
	b, err := Encode(part, nil, options)
	require.NoError(t, err)

	return b.String()
}

func TestCommand_EncodeSimple(t *testing.T) {
	tests := []struct {
		payload Payload
		want    string
	}{
		{payload: NoopCommand{}, want: "A1 NOOP\r\n"},
		{payload: &CapabilityCommand{}, want: "A1 CAPABILITY\r\n"},
		{payload: IdleCommand{}, want: "A1 IDLE\r\n"},
		{payload: SelectCommand{Mailbox: "inbox"}, want: "A1 SELECT INBOX\r\n"},
		{payload: CreateCommand{Mailbox: "Folders/Work Stuff"}, want: "A1 CREATE \"Folders/Work Stuff\"\r\n"},
		{payload: RenameCommand{From: "a", To: "b"}, want: "A1 RENAME a b\r\n"},
		{payload: ListCommand{ListMailbox: "*"}, want: "A1 LIST \"\" \"*\"\r\n"},
		{payload: LSubCommand{Mailbox: "Folders", LSubMailbox: "%"}, want: "A1 LSUB Folders \"%\"\r\n"},
		{
			payload: StatusCommand{Mailbox: "INBOX", Attributes: []StatusAttribute{StatusAttributeMessages, StatusAttributeUnseen}},
			want:    "A1 STATUS INBOX (MESSAGES UNSEEN)\r\n",
		},
		{payload: AuthenticateCommand{Mechanism: "PLAIN"}, want: "A1 AUTHENTICATE PLAIN\r\n"},
		{payload: AuthenticateCommand{Mechanism: "PLAIN", InitialResponse: []byte{}}, want: "A1 AUTHENTICATE PLAIN =\r\n"},
		{payload: AuthenticateCommand{Mechanism: "PLAIN", InitialResponse: []byte("\x00u\x00p")}, want: "A1 AUTHENTICATE PLAIN AHUAcA==\r\n"},
	}

	for _, test := range tests {
		test := test

		t.Run(test.want, func(t *testing.T) {
			require.Equal(t, test.want, encodeString(t, Command{Tag: "A1", Payload: test.payload}, encoder.DefaultOptions()))
		})
	}
}

func TestCommand_EncodeCopyAndMove(t *testing.T) {
	seqSet, err := goimap.ParseSeqSet("1:3,7")
	require.NoError(t, err)

	require.Equal(t, "A2 UID MOVE 1:3,7 Archive\r\n", encodeString(t, Command{Tag: "A2", Payload: MoveCommand{
		UID:     true,
		SeqSet:  seqSet,
		Mailbox: "Archive",
	}}, encoder.DefaultOptions()))

	require.Equal(t, "A3 COPY 1:3,7 Archive\r\n", encodeString(t, Command{Tag: "A3", Payload: CopyCommand{
		SeqSet:  seqSet,
		Mailbox: "Archive",
	}}, encoder.DefaultOptions()))

	_, err = Encode(Command{Tag: "A4", Payload: CopyCommand{Mailbox: "Archive"}}, nil, encoder.DefaultOptions())
	require.Error(t, err)
}

func TestCommand_LoginWithLiteralPassword(t *testing.T) {
	b, err := Encode(Command{Tag: "A1", Payload: LoginCommand{UserID: "user", Password: "pa\r\nss"}}, nil, encoder.DefaultOptions())
	require.NoError(t, err)

	first := b.NextChunk()
	require.True(t, first.WaitForContinuation)
	require.Equal(t, "A1 LOGIN user {6}\r\n", string(first.Bytes))

	second := b.NextChunk()
	require.False(t, second.WaitForContinuation)
	require.Equal(t, "pa\r\nss\r\n", string(second.Bytes))
}

func TestCommand_SanitizedLogin(t *testing.T) {
	cmd := Command{Tag: "A1", Payload: LoginCommand{UserID: "user", Password: "hunter2"}}

	require.NotContains(t, cmd.SanitizedString(), "hunter2")
	require.Equal(t, "A1 LOGIN user <redacted>\r\n", encodeString(t, cmd, encoder.DefaultOptions().WithLoggingMode(true)))
}

func TestCommand_Kinds(t *testing.T) {
	require.True(t, Command{Tag: "A1", Payload: &IdleCommand{}}.IsIdle())
	require.True(t, Command{Tag: "A1", Payload: AuthenticateCommand{}}.IsAuthenticate())
	require.False(t, Command{Tag: "A1", Payload: NoopCommand{}}.IsIdle())
}

func TestTagOf(t *testing.T) {
	tag, ok := TagOf(Command{Tag: "A1", Payload: NoopCommand{}})
	require.True(t, ok)
	require.Equal(t, "A1", tag)

	tag, ok = TagOf(AppendStart{Tag: "A2", Mailbox: "INBOX"})
	require.True(t, ok)
	require.Equal(t, "A2", tag)

	_, ok = TagOf(IdleDone{})
	require.False(t, ok)

	_, ok = TagOf(AppendFinish{})
	require.False(t, ok)
}

func TestIdleDoneAndContinuationResponse(t *testing.T) {
	require.Equal(t, "DONE\r\n", encodeString(t, IdleDone{}, encoder.DefaultOptions()))
	require.Equal(t, "aGVsbG8=\r\n", encodeString(t, ContinuationResponse{Data: []byte("hello")}, encoder.DefaultOptions()))
	require.Equal(t, "\r\n", encodeString(t, ContinuationResponse{}, encoder.DefaultOptions()))
	require.Equal(t, "*\r\n", encodeString(t, ContinuationResponse{Cancel: true}, encoder.DefaultOptions()))
}

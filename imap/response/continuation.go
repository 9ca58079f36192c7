package response

import "fmt"

// ContinuationRequest is a "+" line: the server is ready for more client data.
type ContinuationRequest interface {
	String() string

	isContinuationRequest()
}

// ContinuationData carries base64 decoded data, typically an authentication challenge.
type ContinuationData struct {
	Data []byte
}

func (*ContinuationData) isContinuationRequest() {}

func (r *ContinuationData) String() string {
	return fmt.Sprintf("+ <%v bytes>", len(r.Data))
}

// ContinuationText carries free response text such as "+ Ready for literal data".
type ContinuationText struct {
	Code string
	Text string
}

func (*ContinuationText) isContinuationRequest() {}

func (r *ContinuationText) String() string {
	return joinResponse([]string{"+"}, r.Code, r.Text)
}

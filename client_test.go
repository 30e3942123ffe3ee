// snoopctl client tests
package igmpsnoop

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gocheck "gopkg.in/check.v1"
)

var exampleSnapshotPayload = `
{
  "groups": [
    {"mac": "01:00:5e:00:00:01", "portmap": [false, false, true, false]}
  ],
  "group_count": 1,
  "member_count": 1,
  "host_count": 0,
  "router_portmap": [false, true, false, false]
}
`

// Bootstrap gocheck.
func TestClient(t *testing.T) { gocheck.TestingT(t) }

type ClientSuite struct {
	client Client
	server *httptest.Server
}

var _ = gocheck.Suite(&ClientSuite{})

func (s *ClientSuite) SetUpSuite(c *gocheck.C) {
	s.server = httptest.NewServer(func() http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(exampleSnapshotPayload))
		}
	}())
	cl := NewClient("localhost", "1234")
	cl.getFunc = func(url string) (resp *http.Response, err error) {
		return s.server.Client().Get(s.server.URL)
	}
	s.client = cl
}

func (s *ClientSuite) TearDownSuite(c *gocheck.C) {
	s.server.Close()
}

func (s *ClientSuite) TestGetSnapshot(c *gocheck.C) {
	snap, err := s.client.GetSnapshot()
	c.Assert(err, gocheck.IsNil)

	c.Assert(snap.GroupCount, gocheck.Equals, 1)
	c.Assert(snap.MemberCount, gocheck.Equals, 1)
	c.Assert(len(snap.Groups), gocheck.Equals, 1)
	c.Assert(snap.Groups[0].MAC, gocheck.Equals, "01:00:5e:00:00:01")
	c.Assert(snap.RouterPortmap[1], gocheck.Equals, true)
}

func (s *ClientSuite) TestHostnameAndPort(c *gocheck.C) {
	c.Assert(s.client.Hostname(), gocheck.Equals, "localhost")
	c.Assert(s.client.Port(), gocheck.Equals, "1234")
}

func TestClientGetSnapshotError(t *testing.T) {
	cl := NewClient("localhost", "1234")
	cl.getFunc = func(url string) (resp *http.Response, err error) {
		rec := httptest.NewRecorder()
		rec.WriteHeader(http.StatusInternalServerError)
		rec.Body.WriteString("boom")
		return rec.Result(), nil
	}
	if _, err := cl.GetSnapshot(); err == nil {
		t.Error("expected an error for a non-2xx response")
	}
}

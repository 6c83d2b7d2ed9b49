package netbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vlansync/vlansync/pkg/config"
	"github.com/vlansync/vlansync/pkg/util"
)

func testClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NetBoxConfig{URL: server.URL, APIToken: "nb-secret", Timeout: 5}
	return New(cfg, map[string]string{"_default": "VLAN-1"}, opts...)
}

func TestDevicePorts(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token nb-secret" {
			t.Errorf("auth header = %q", got)
		}
		switch r.URL.Path {
		case "/api/dcim/devices/":
			if r.URL.Query().Get("name") != "access-sw-01" {
				t.Errorf("device query = %v", r.URL.Query())
			}
			fmt.Fprint(w, `{"count": 1, "results": [{"id": 7, "name": "access-sw-01"}]}`)
		case "/api/dcim/interfaces/":
			if r.URL.Query().Get("device_id") != "7" {
				t.Errorf("interface query = %v", r.URL.Query())
			}
			fmt.Fprint(w, `{"count": 3, "next": null, "results": [
				{"id": 1, "name": "port1",
				 "untagged_vlan": {"id": 10, "vid": 90, "name": "vlan90"},
				 "tagged_vlans": [{"id": 11, "vid": 50, "name": "vlan50"}]},
				{"id": 2, "name": "port2",
				 "untagged_vlan": {"id": 12, "vid": 1, "display": "_default"},
				 "tagged_vlans": []},
				{"id": 3, "name": "", "tagged_vlans": []}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))

	ports, err := c.DevicePorts(context.Background(), "access-sw-01")
	if err != nil {
		t.Fatalf("DevicePorts: %v", err)
	}
	// The nameless interface is skipped.
	if len(ports) != 2 {
		t.Fatalf("got %d ports, want 2", len(ports))
	}

	if ports[0].NativeName() != "VLAN-90" {
		t.Errorf("port1 native = %q, want normalized VLAN-90", ports[0].NativeName())
	}
	if !ports[0].Allowed.Has("VLAN-50") || len(ports[0].Allowed) != 1 {
		t.Errorf("port1 allowed = %v, want [VLAN-50]", ports[0].Allowed.Names())
	}

	// Access port: untagged VLAN and no tagged list allows exactly the
	// native VLAN. The display fallback and translation both apply.
	if ports[1].NativeName() != "VLAN-1" {
		t.Errorf("port2 native = %q, want translated VLAN-1", ports[1].NativeName())
	}
	if !ports[1].Allowed.Has("VLAN-1") || len(ports[1].Allowed) != 1 {
		t.Errorf("port2 allowed = %v, want [VLAN-1]", ports[1].Allowed.Names())
	}
}

func TestDevicePortsNotFound(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"count": 0, "results": []}`)
	}))

	_, err := c.DevicePorts(context.Background(), "ghost-sw")
	if !errors.Is(err, util.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeviceInterfacesPagination(t *testing.T) {
	var server *httptest.Server
	pages := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dcim/devices/":
			fmt.Fprint(w, `{"count": 1, "results": [{"id": 7, "name": "big-sw"}]}`)
		case "/api/dcim/interfaces/":
			pages++
			switch r.URL.Query().Get("offset") {
			case "0":
				fmt.Fprintf(w, `{"count": 2, "next": "%s/api/dcim/interfaces/?offset=1000", "results": [
					{"id": 1, "name": "port1", "tagged_vlans": []}
				]}`, server.URL)
			case "1000":
				fmt.Fprint(w, `{"count": 2, "next": null, "results": [
					{"id": 2, "name": "port2", "tagged_vlans": []}
				]}`)
			default:
				t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			}
		default:
			http.NotFound(w, r)
		}
	})
	server = httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.NetBoxConfig{URL: server.URL, APIToken: "x", Timeout: 5}
	c := New(cfg, nil)

	ports, err := c.DevicePorts(context.Background(), "big-sw")
	if err != nil {
		t.Fatalf("DevicePorts: %v", err)
	}
	if pages != 2 {
		t.Errorf("fetched %d pages, want 2", pages)
	}
	if len(ports) != 2 || ports[0].Name != "port1" || ports[1].Name != "port2" {
		t.Errorf("ports = %+v", ports)
	}
}

func TestDevicePortsFetchError(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	_, err := c.DevicePorts(context.Background(), "access-sw-01")
	if err == nil {
		t.Fatal("want error on 500 response")
	}
	if errors.Is(err, util.ErrNotFound) {
		t.Fatal("server error must not look like a missing device")
	}
}

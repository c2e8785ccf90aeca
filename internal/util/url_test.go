package util

import "testing"

func TestJoinURLPathCombinesBaseAndPath(t *testing.T) {
	cases := []struct {
		name string
		base string
		path string
		want string
	}{
		{
			name: "trailing and leading slash both present",
			base: "http://proxy-1.example.net:8443/",
			path: "/healthz",
			want: "http://proxy-1.example.net:8443/healthz",
		},
		{
			name: "neither slash present",
			base: "http://proxy-2.example.net:8080",
			path: "status",
			want: "http://proxy-2.example.net:8080/status",
		},
		{
			name: "only base has trailing slash",
			base: "http://proxy-3.example.net/probe/",
			path: "ping",
			want: "http://proxy-3.example.net/probe/ping",
		},
		{
			name: "only path has leading slash",
			base: "http://proxy-4.example.net",
			path: "/v1/health",
			want: "http://proxy-4.example.net/v1/health",
		},
		{
			name: "empty base keeps just the path",
			base: "",
			path: "/v1/health",
			want: "/v1/health",
		},
		{
			name: "empty path keeps just the base",
			base: "http://proxy-5.example.net",
			path: "",
			want: "http://proxy-5.example.net",
		},
		{
			name: "nested subpath on both sides",
			base: "http://proxy-6.example.net/region/eu/",
			path: "/check/tcp",
			want: "http://proxy-6.example.net/region/eu/check/tcp",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := JoinURLPath(tc.base, tc.path); got != tc.want {
				t.Errorf("JoinURLPath(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
			}
		})
	}
}

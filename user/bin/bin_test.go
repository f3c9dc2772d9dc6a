//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package bin

import (
	"testing"
)

func TestRemotePrograms(t *testing.T) {
	programs := Programs()
	remote := RemotePrograms()

	if _, ok := remote["halt"]; ok {
		t.Errorf("remote programs contain halt")
	}
	if _, ok := programs["halt"]; !ok {
		t.Errorf("programs do not contain halt")
	}
	if len(remote) != len(programs)-1 {
		t.Errorf("%d remote programs, expected %d", len(remote),
			len(programs)-1)
	}
	for name := range remote {
		if _, ok := programs[name]; !ok {
			t.Errorf("remote program %s not in programs", name)
		}
	}
}

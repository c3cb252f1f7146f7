// Licensed to Elasticsearch B.V. under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. Elasticsearch B.V. licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package ownership

import "github.com/urso/sderr"

var (
	// ErrEmptyHandle is raised as panic when dereferencing a handle that does
	// not manage a resource.
	ErrEmptyHandle = sderr.New("dereference of empty handle")

	// ErrExpired is returned by (*Weak).Upgrade if the observed resource has
	// already been released.
	ErrExpired = sderr.New("weak reference expired")

	// ErrReleasedTooOften is raised as panic if a control block counter drops
	// below zero.
	ErrReleasedTooOften = sderr.New("ref count released too often")

	// ErrResurrect is raised as panic if a released resource is retained again.
	ErrResurrect = sderr.New("retaining released ref count")
)

func invariant(b bool, err error) {
	if !b {
		panic(err)
	}
}

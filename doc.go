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

// Package ownership provides explicit ownership handles for heap allocated
// resources.
//
// Unique is the sole owner of a resource. It can be moved, but not copied.
// Shared is one of many owners of a resource. The owners share a control block
// that counts the live Shared handles and runs the resource's Deleter once the
// last owner is closed. Weak observes a shared resource without keeping it
// alive. It is used to break reference cycles between shared resources.
//
// Go has no destructors. Closing a handle is what ends its scope:
//
//	res := ownership.MakeShared(openResource())
//	defer res.Close()
//
// Handles must not be copied by assignment. Use Move, Clone, Downgrade, or
// Lock to derive new handles. `go vet` reports accidental copies.
//
// Counter updates are atomic, so handles referencing the same resource can be
// created and closed from multiple go-routines concurrently. Access to the
// managed value itself is not synchronized.
package ownership

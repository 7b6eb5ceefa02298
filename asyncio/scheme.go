// Copyright 2024 CloudWeGo Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asyncio

import "strings"

// schemePrefix is spec §6's exposed URI scheme: "async:<inner-uri>".
const schemePrefix = "async:"

// StripScheme removes the "async:" prefix before the remainder is
// delegated to the inner opener (spec §4.5). A uri without the prefix is
// returned unchanged.
func StripScheme(uri string) string {
	return strings.TrimPrefix(uri, schemePrefix)
}

// splitInnerScheme splits "scheme:rest" so Open can hand both parts to
// source.Open's registry lookup. A uri with no colon has no scheme.
func splitInnerScheme(uri string) (scheme, rest string) {
	i := strings.IndexByte(uri, ':')
	if i < 0 {
		return "", uri
	}
	return uri[:i], uri[i+1:]
}

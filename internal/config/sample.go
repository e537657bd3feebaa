package config

// sampleCatalogYAML seeds .tourdesk/catalog.yaml so a fresh project can
// compose packages before any backend exists.
const sampleCatalogYAML = `destinations:
  - id: dst-kathmandu
    name: Kathmandu
    location: Bagmati, Nepal
    category: city
  - id: dst-pokhara
    name: Pokhara
    location: Gandaki, Nepal
    category: lakeside
  - id: dst-ghandruk
    name: Ghandruk
    location: Kaski, Nepal
    category: village
  - id: dst-poonhill
    name: Poon Hill
    location: Myagdi, Nepal
    category: viewpoint
  - id: dst-chitwan
    name: Chitwan National Park
    location: Bagmati, Nepal
    category: wildlife

accommodations:
  - id: acc-yak-yeti
    name: Hotel Yak & Yeti
    location: Kathmandu
    category: hotel
  - id: acc-fishtail
    name: Fishtail Lodge
    location: Pokhara
    category: lodge
  - id: acc-ghandruk-guest
    name: Ghandruk Guest House
    location: Ghandruk
    category: teahouse
  - id: acc-jungle-camp
    name: Jungle Safari Camp
    location: Chitwan
    category: camp

guides:
  - id: gd-pasang
    name: Pasang Sherpa
    category: high altitude
    languages: [English, Nepali]
  - id: gd-mira
    name: Mira Gurung
    category: cultural
    languages: [English, German, Nepali]
  - id: gd-arjun
    name: Arjun Thapa
    category: wildlife
    languages: [English, Hindi]
`
